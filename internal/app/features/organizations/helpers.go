// internal/app/features/organizations/helpers.go
package organizations

import (
	"errors"

	organizationstore "github.com/dalemusser/leadscout/internal/app/store/organizations"
	userstore "github.com/dalemusser/leadscout/internal/app/store/users"
)

func isDuplicateOrg(err error) bool {
	return errors.Is(err, organizationstore.ErrDuplicateOrganization)
}

func isUserNotFound(err error) bool {
	return errors.Is(err, userstore.ErrNotFound)
}

// planChoices is the order plans appear in the edit form.
var planChoices = []string{"bronze", "silver", "gold", "unlimited"}
