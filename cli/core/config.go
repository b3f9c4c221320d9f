package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/pizzashop/pizzasetup/pkg/probe"
)

// MongoConfig holds the database check settings.
type MongoConfig struct {
	URI string `env:"MONGODB_URI" validate:"required,uri"`
}

// SMTPConfig holds the mail check settings.
type SMTPConfig struct {
	Host string `env:"SMTP_HOST" validate:"required,hostname_rfc1123|ip"`
	Port int    `env:"SMTP_PORT" validate:"required,min=1,max=65535"`
	User string `env:"SMTP_USER" validate:"required"`
	Pass string `env:"SMTP_PASS" validate:"required"`
}

// RazorpayConfig holds the payment check settings.
type RazorpayConfig struct {
	KeyID     string `env:"RAZORPAY_KEY_ID" validate:"required"`
	KeySecret string `env:"RAZORPAY_KEY_SECRET" validate:"required"`
}

// FrontendConfig holds the web client settings.
type FrontendConfig struct {
	URL string `env:"FRONTEND_URL" validate:"required,http_url"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their environment key.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("env"), ",")
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// LoadConfig fills cfg (a pointer to one of the *Config structs) from a
// store snapshot and validates it. Text values are converted here, at the
// point of use; the store itself only holds strings.
func LoadConfig(snapshot map[string]string, cfg any) error {
	if err := env.ParseWithOptions(cfg, env.Options{Environment: snapshot}); err != nil {
		return parseFailure(cfg, err)
	}
	if err := configValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ValidationError{Key: fe.Field(), Message: describeTag(fe)}
		}
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// parseFailure names the env key of the first field caarlos0/env could not
// convert.
func parseFailure(cfg any, err error) error {
	var pe env.ParseError
	if !errors.As(err, &pe) {
		var agg env.AggregateError
		if !errors.As(err, &agg) {
			return &ValidationError{Message: err.Error()}
		}
		found := false
		for _, e := range agg.Errors {
			if errors.As(e, &pe) {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{Message: err.Error()}
		}
	}
	msg := "cannot parse value"
	if pe.Err != nil {
		msg = "cannot parse value: " + pe.Err.Error()
	}
	return &ValidationError{Key: envKeyOf(cfg, pe.Name), Message: msg}
}

func envKeyOf(cfg any, field string) string {
	t := reflect.TypeOf(cfg)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return field
	}
	f, ok := t.FieldByName(field)
	if !ok {
		return field
	}
	if name, _, _ := strings.Cut(f.Tag.Get("env"), ","); name != "" {
		return name
	}
	return field
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "a value is required"
	case "min", "max":
		return fmt.Sprintf("must be between 1 and 65535, got %v", fe.Value())
	case "uri", "http_url":
		return fmt.Sprintf("%q is not a valid URL", fe.Value())
	case "hostname_rfc1123|ip":
		return fmt.Sprintf("%q is not a valid host name", fe.Value())
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}

// ResolveService resolves every key of svc through the store, prompting for
// the ones that are missing, and returns the resolved values by key.
func ResolveService(s *EnvStore, svc probe.Service) (map[string]string, error) {
	values := make(map[string]string, len(svc.Keys()))
	for _, spec := range svc.Keys() {
		v, err := s.Resolve(QuestionFor(spec))
		if err != nil {
			return nil, err
		}
		values[spec.Key] = v
	}
	return values, nil
}

// ReconfigureService prompts for every key of svc, keeping current values on
// empty answers.
func ReconfigureService(s *EnvStore, svc probe.Service) (map[string]string, error) {
	values := make(map[string]string, len(svc.Keys()))
	for _, spec := range svc.Keys() {
		v, err := s.Reconfigure(QuestionFor(spec))
		if err != nil {
			return nil, err
		}
		values[spec.Key] = v
	}
	return values, nil
}
