package probe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func fieldValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidPort accepts a TCP port number between 1 and 65535.
func ValidPort(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%q is not a number", v)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("must be between 1 and 65535, got %d", n)
	}
	return nil
}

// ValidHost accepts a DNS host name or an IP address.
func ValidHost(v string) error {
	if fieldValidator().Var(v, "hostname_rfc1123|ip") != nil {
		return fmt.Errorf("%q is not a valid host name", v)
	}
	return nil
}

// ValidMongoURI accepts mongodb:// and mongodb+srv:// connection strings.
func ValidMongoURI(v string) error {
	if !strings.HasPrefix(v, "mongodb://") && !strings.HasPrefix(v, "mongodb+srv://") {
		return errors.New(`must start with "mongodb://" or "mongodb+srv://"`)
	}
	if fieldValidator().Var(v, "uri") != nil {
		return fmt.Errorf("%q is not a valid URI", v)
	}
	return nil
}

// ValidHTTPURL accepts absolute http and https URLs.
func ValidHTTPURL(v string) error {
	if fieldValidator().Var(v, "http_url") != nil {
		return fmt.Errorf("%q is not an http(s) URL", v)
	}
	return nil
}
