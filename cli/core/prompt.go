package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/pizzashop/pizzasetup/pkg/probe"
)

// Question is a single interactive prompt for one configuration key.
type Question struct {
	Key   string
	Label string // e.g. "Enter SMTP Port"

	// Default is used when the answer is empty. Generate, when set, is called
	// instead and only if the answer is empty.
	Default  string
	Generate func() (string, error)

	// Validate, when set, must accept an answer before it is stored.
	Validate func(string) error

	Secret bool

	// keep is set by Reconfigure: the default is the current stored value.
	keep bool
}

// QuestionFor builds the prompt for a service key.
func QuestionFor(spec probe.KeySpec) Question {
	return Question{
		Key:      spec.Key,
		Label:    spec.Label,
		Default:  spec.Default,
		Generate: spec.Generate,
		Validate: spec.Validate,
		Secret:   spec.Secret,
	}
}

// Text renders the prompt line shown to the operator.
func (q Question) Text() string {
	label := q.Label
	if label == "" {
		label = "Enter " + q.Key
	}
	switch {
	case q.keep && q.Secret:
		return label + " (press Enter to keep current): "
	case q.Default != "" && !q.Secret:
		return fmt.Sprintf("%s (default: %s): ", label, q.Default)
	case q.Generate != nil:
		return label + " (press Enter to generate): "
	}
	return label + ": "
}

// Check runs the question's validator, if any, against value.
func (q Question) Check(value string) error {
	if q.Validate == nil {
		return nil
	}
	if err := q.Validate(value); err != nil {
		return &ValidationError{Key: q.Key, Message: err.Error()}
	}
	return nil
}

func (q Question) fallback() (string, error) {
	if q.Default == "" && q.Generate != nil {
		return q.Generate()
	}
	return q.Default, nil
}

// Prompter obtains values interactively.
type Prompter interface {
	// Ask shows the question and returns the trimmed answer (possibly empty).
	// It returns io.EOF when no more input is available.
	Ask(q Question) (string, error)

	// Reject tells the operator why an answer was not accepted.
	Reject(q Question, err error)
}

// LinePrompter reads one answer per line. Secret questions are read without
// echo when the input is a terminal.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

var _ Prompter = (*LinePrompter)(nil)

// NewLinePrompter returns a prompter reading from in and writing prompts to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &LinePrompter{in: bufio.NewReader(in), out: out, fd: fd}
}

func (p *LinePrompter) Ask(q Question) (string, error) {
	fmt.Fprint(p.out, "  "+q.Text())

	if q.Secret && p.fd >= 0 {
		b, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", q.Key, err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	text, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && text != "" {
			return strings.TrimSpace(text), nil
		}
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (p *LinePrompter) Reject(q Question, err error) {
	fmt.Fprintf(p.out, "  ✗ %v\n", err)
}
