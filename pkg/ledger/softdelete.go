package ledger

import (
	"time"

	"budgeter/models"
)

// ensureActive fails with NotFound when r has been soft-deleted.
func ensureActive(r models.Resource) error {
	if !r.Lifecycle().Active() {
		return NotFound("%s is deleted", r.ResourceName())
	}
	return nil
}

// softDelete moves r from Active to Deleted. Deleting twice is an error, not a no-op.
func softDelete(r models.Resource, at time.Time) error {
	if err := ensureActive(r); err != nil {
		return err
	}
	rec := r.Lifecycle()
	rec.DeletedAt = &at
	return nil
}

// reactivate moves a deleted budget back to Active. Callers overwrite the
// creatable fields before persisting.
func reactivate(r models.Resource, at time.Time) {
	rec := r.Lifecycle()
	rec.DeletedAt = nil
	rec.UpdatedAt = &at
}

func touch(r models.Resource, at time.Time) {
	r.Lifecycle().UpdatedAt = &at
}
