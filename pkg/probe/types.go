// Package probe describes the external services the pizza backend depends on.
//
// Each [Service] lists the configuration keys it needs ([KeySpec]), how to
// prompt for them, and the help text shown to the operator before prompting.
// Services register themselves from init() and are looked up by name; the
// actual client round trips live in cli/core.
package probe

// Service is one external dependency of the backend (database, mail relay,
// payment gateway, ...).
type Service interface {
	// Name returns the short identifier (e.g., "mongodb", "smtp").
	Name() string

	// DisplayName returns a human-readable name (e.g., "MongoDB").
	DisplayName() string

	// Keys returns the configuration keys in prompt order.
	Keys() []KeySpec

	// Help returns the lines printed before prompting for the keys.
	Help() []string
}

// KeySpec describes a single configuration key and how to prompt for it.
type KeySpec struct {
	// Key is the environment key written to the artifact (e.g. "SMTP_HOST").
	Key string

	// Label is the prompt text without the default suffix
	// (e.g. "Enter SMTP Host").
	Label string

	// Default is used when the operator submits an empty answer.
	// Empty means the key is required.
	Default string

	// Generate, when set, produces the default at prompt time. It takes
	// precedence over Default and is used for values that must be random.
	Generate func() (string, error)

	// Validate, when set, checks an answer before it is stored.
	Validate func(string) error

	// Secret hides the input and masks the value in listings.
	Secret bool

	// Aliases are deprecated key names still honoured on read.
	Aliases []string
}

// Required reports whether the key has no default of any kind.
func (k KeySpec) Required() bool {
	return k.Default == "" && k.Generate == nil
}

// ResolveDefault returns the default value, generating it if needed.
func (k KeySpec) ResolveDefault() (string, error) {
	if k.Generate != nil {
		return k.Generate()
	}
	return k.Default, nil
}
