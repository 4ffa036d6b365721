// Package operations holds the use cases behind each tool: argument
// defaults and bounds, logging, and calls into the Zotero backend. Tools and
// resources share these so both surfaces behave the same.
package operations

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is wrapped by every input validation failure. No
	// backend call is made when it is returned.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrEmptyQuery = fmt.Errorf("%w: query must not be empty", ErrInvalidArgument)
	ErrEmptyKey   = fmt.Errorf("%w: item_key must not be empty", ErrInvalidArgument)
)

// normalizeKey trims a user-supplied item or collection key. Zotero keys are
// upper-case alphanumerics; anything with separators is rejected early.
func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	if strings.ContainsAny(key, "/?#& \t\n") {
		return "", fmt.Errorf("%w: %q is not a Zotero key", ErrInvalidArgument, key)
	}
	return key, nil
}
