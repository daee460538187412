package domain

import (
	"net/url"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidateRequired fails with ErrMissingFields when the trimmed name or url is empty.
func ValidateRequired(name, rawURL string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(rawURL) == "" {
		return ErrMissingFields
	}
	return nil
}

// ValidateURL checks that rawURL is a well-formed absolute URL with both a
// scheme and a host, and no whitespace once trimmed. It never touches the network.
func ValidateURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if strings.ContainsFunc(rawURL, unicode.IsSpace) {
		return ErrInvalidURL
	}
	if err := validatorInstance().Var(rawURL, "required,url"); err != nil {
		return ErrInvalidURL
	}

	// validator accepts opaque forms such as mailto:, an authority is mandatory here
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return ErrInvalidURL
	}
	return nil
}
