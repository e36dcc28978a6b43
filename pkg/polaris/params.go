package polaris

import (
	"regexp"

	"github.com/wilhg/polaris-mcp/pkg/errmodel"
)

// Path parameters are interpolated into URL paths with no further
// escaping, so this character class is the injection barrier.
var pathParamPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidatePathParam checks an untrusted identifier destined for a URL path
// segment. It returns the value unchanged on success. Body values (SQL
// text, query strings) must not go through this; they are the upstream
// service's responsibility.
func ValidatePathParam(value, field string) (string, error) {
	if value == "" {
		return "", errmodel.Validation(errmodel.CodeEmptyValue, field+" cannot be empty", nil)
	}
	if !pathParamPattern.MatchString(value) {
		return "", errmodel.Validation(errmodel.CodeInvalidCharacters,
			field+" may only contain letters, digits, underscores and hyphens", nil)
	}
	return value, nil
}
