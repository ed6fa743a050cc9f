package ledger

import (
	"errors"
	"fmt"

	"budgeter/models"
)

// Authorize fails with Unauthorized unless userID owns r. A broken owner
// chain is reported as Unauthorized rather than an internal error.
func Authorize(l models.OwnerLookup, r models.Owned, userID uint) error {
	owner, err := r.OwnerID(l)
	if errors.Is(err, models.ErrBrokenOwnerChain) {
		return Unauthorized("Not authorized")
	}
	if err != nil {
		return fmt.Errorf("resolve owner of %s %d: %w", r.ResourceName(), r.Lifecycle().ID, err)
	}
	if owner != userID {
		return Unauthorized("Not authorized")
	}
	return nil
}
