// Package core provides the business logic behind the pizzasetup commands:
// the .env configuration store, the interactive prompter and the
// connectivity checks. Functions in this package return structured results
// rather than printing, leaving output formatting to the caller; the only
// exception is the prompter, which writes to the writer it was given.
package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pizzashop/pizzasetup/pkg/probe"
)

// Entry is one KEY=VALUE pair from the artifact.
type Entry struct {
	Key   string
	Value string
}

// EnvStore persists configuration as KEY=VALUE lines in a flat file.
//
// Values are stored verbatim: no quoting, no escaping, numbers stay text.
// Every operation re-reads the file, so the store never holds stale state
// across calls. It is not safe for concurrent writers.
type EnvStore struct {
	path     string
	prompter Prompter
	logger   *log.Logger
	warnings []ParseWarning
}

// StoreOption configures an EnvStore.
type StoreOption func(*EnvStore)

// WithPrompter sets the prompter used by Resolve and Reconfigure.
func WithPrompter(p Prompter) StoreOption {
	return func(s *EnvStore) {
		s.prompter = p
	}
}

// WithLogger sets the logger for parse warnings and write traces.
func WithLogger(l *log.Logger) StoreOption {
	return func(s *EnvStore) {
		s.logger = l
	}
}

// OpenEnvStore returns a store backed by the file at path. The file is not
// touched until the first operation; a missing file reads as empty.
func OpenEnvStore(path string, opts ...StoreOption) *EnvStore {
	s := &EnvStore{
		path:   path,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the artifact path.
func (s *EnvStore) Path() string { return s.path }

// Warnings returns the malformed lines skipped by the most recent read.
func (s *EnvStore) Warnings() []ParseWarning { return s.warnings }

type envLine struct {
	raw   string
	key   string
	value string
	entry bool // false for blank, comment and malformed lines
}

func (s *EnvStore) load() ([]envLine, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.warnings = nil
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read %s: %w", s.path, err)
	}
	lines, warnings := parseEnvLines(string(data))
	// Every operation re-reads the file; only report lines not seen before.
	if !slices.Equal(warnings, s.warnings) {
		for _, w := range warnings {
			s.logger.Warn("skipped malformed line", "path", s.path, "line", w.Line, "text", w.Text)
		}
	}
	s.warnings = warnings
	return lines, nil
}

func parseEnvLines(content string) ([]envLine, []ParseWarning) {
	if content == "" {
		return nil, nil
	}
	raws := strings.Split(content, "\n")
	if raws[len(raws)-1] == "" {
		raws = raws[:len(raws)-1]
	}

	lines := make([]envLine, 0, len(raws))
	var warnings []ParseWarning
	for i, raw := range raws {
		text := strings.TrimSuffix(raw, "\r")
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			lines = append(lines, envLine{raw: raw})
			continue
		}
		key, value, found := strings.Cut(text, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			warnings = append(warnings, ParseWarning{Line: i + 1, Text: trimmed})
			lines = append(lines, envLine{raw: raw})
			continue
		}
		lines = append(lines, envLine{raw: raw, key: key, value: value, entry: true})
	}
	return lines, warnings
}

// Get returns the value bound to key. ok is false when no line binds it.
// When a key occurs on several lines the last one wins.
func (s *EnvStore) Get(key string) (value string, ok bool, err error) {
	lines, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, ok = lookup(lines, key)
	if ok {
		return value, true, nil
	}
	if spec, known := probe.LookupKey(key); known && spec.Key == key {
		for _, alias := range spec.Aliases {
			if v, found := lookup(lines, alias); found {
				s.logger.Warn("using deprecated key", "key", alias, "canonical", key)
				return v, true, nil
			}
		}
	}
	return "", false, nil
}

func lookup(lines []envLine, key string) (string, bool) {
	var (
		value string
		found bool
	)
	for _, l := range lines {
		if l.entry && l.key == key {
			value, found = l.value, true
		}
	}
	return value, found
}

// Set binds key to value. An existing line for key is rewritten in place and
// any later duplicates of it are dropped; otherwise a new line is appended.
// All other lines are written back unchanged and in order.
func (s *EnvStore) Set(key, value string) error {
	if err := ValidateEntry(key, value); err != nil {
		return err
	}
	lines, err := s.load()
	if err != nil {
		return err
	}

	var b strings.Builder
	replaced := false
	for _, l := range lines {
		if l.entry && l.key == key {
			if replaced {
				continue
			}
			replaced = true
			b.WriteString(key + "=" + value + "\n")
			continue
		}
		b.WriteString(l.raw + "\n")
	}
	if !replaced {
		b.WriteString(key + "=" + value + "\n")
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}
	// Mode applies only when the file is created; existing modes are kept.
	if err := os.WriteFile(s.path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("cannot write %s: %w", s.path, err)
	}
	s.logger.Debug("stored entry", "path", s.path, "key", key, "replaced", replaced)
	return nil
}

// ValidateEntry reports whether key and value can be stored as one
// KEY=VALUE line and read back unchanged.
func ValidateEntry(key, value string) error {
	switch {
	case key == "":
		return &ValidationError{Message: "key must not be empty"}
	case strings.ContainsAny(key, "= \t\r\n"):
		return &ValidationError{Key: key, Message: "key must not contain '=', whitespace or line breaks"}
	case strings.HasPrefix(key, "#"):
		return &ValidationError{Key: key, Message: "key must not start with '#'"}
	case strings.ContainsAny(value, "\r\n"):
		return &ValidationError{Key: key, Message: "value must be a single line"}
	}
	return nil
}

// Entries returns every binding in file order, one per key (last wins, at
// the position of its first occurrence).
func (s *EnvStore) Entries() ([]Entry, error) {
	lines, err := s.load()
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	var out []Entry
	for _, l := range lines {
		if !l.entry {
			continue
		}
		if i, seen := index[l.key]; seen {
			out[i].Value = l.value
			continue
		}
		index[l.key] = len(out)
		out = append(out, Entry{Key: l.key, Value: l.value})
	}
	return out, nil
}

// Snapshot returns all bindings as a map. Canonical keys that are only
// present under a deprecated alias are filled from the alias.
func (s *EnvStore) Snapshot() (map[string]string, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	for _, svc := range probe.All() {
		for _, spec := range svc.Keys() {
			if _, ok := m[spec.Key]; ok {
				continue
			}
			for _, alias := range spec.Aliases {
				if v, ok := m[alias]; ok {
					m[spec.Key] = v
					break
				}
			}
		}
	}
	return m, nil
}

// Resolve returns the stored value for q.Key. If it is absent, blank or
// rejected by the question's validator the operator is prompted; an empty
// answer falls back to the question's default. The resolved value is
// persisted before it is returned. Blank or invalid answers are rejected and
// asked again.
func (s *EnvStore) Resolve(q Question) (string, error) {
	v, ok, err := s.Get(q.Key)
	if err != nil {
		return "", err
	}
	if ok && strings.TrimSpace(v) != "" {
		err := q.Check(v)
		if err == nil {
			return v, nil
		}
		s.logger.Warn("stored value is invalid", "key", q.Key, "err", err)
	}
	return s.ask(q)
}

// ResolveWithPrompt is Resolve for a plain key, prompt text and default.
func (s *EnvStore) ResolveWithPrompt(key, promptText, def string) (string, error) {
	return s.Resolve(Question{Key: key, Label: promptText, Default: def})
}

// Reconfigure always prompts, offering the current value (if any) as the
// default so that an empty answer keeps it.
func (s *EnvStore) Reconfigure(q Question) (string, error) {
	v, ok, err := s.Get(q.Key)
	if err != nil {
		return "", err
	}
	if ok && strings.TrimSpace(v) != "" && q.Check(v) == nil {
		q.Default = v
		q.Generate = nil
		q.keep = true
	}
	return s.ask(q)
}

func (s *EnvStore) ask(q Question) (string, error) {
	if s.prompter == nil {
		return "", &ValidationError{Key: q.Key, Message: "not set and no interactive input available"}
	}
	for {
		answer, err := s.prompter.Ask(q)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("no value entered for %s: %w", q.Key, err)
			}
			return "", err
		}
		if answer == "" {
			if answer, err = q.fallback(); err != nil {
				return "", err
			}
		}
		if strings.TrimSpace(answer) == "" {
			s.prompter.Reject(q, &ValidationError{Key: q.Key, Message: "a value is required"})
			continue
		}
		if err := q.Check(answer); err != nil {
			s.prompter.Reject(q, err)
			continue
		}
		if err := s.Set(q.Key, answer); err != nil {
			if IsValidation(err) {
				s.prompter.Reject(q, err)
				continue
			}
			return "", err
		}
		return answer, nil
	}
}
