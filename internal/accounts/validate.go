package accounts

import (
	"fmt"
	"regexp"
)

var idRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateID checks that an account id conforms to naming rules. Ids
// become directory names, so the alphabet is deliberately narrow.
func ValidateID(id string) error {
	if !idRegexp.MatchString(id) {
		return fmt.Errorf("invalid account id %q: must match ^[a-z0-9_-]{1,64}$", id)
	}
	return nil
}
