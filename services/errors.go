package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. Controllers map them onto
// HTTP statuses and business codes.
var (
	ErrValidation    = errors.New("missing or invalid input")
	ErrForbidden     = errors.New("caller is not allowed to perform this action")
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyMember = errors.New("user is already a member of this league")
)

// AggregateUpdateError reports point entries that could not be applied
// after the retry budget was exhausted. The primary mutation has
// already succeeded when this is returned: the caller should report
// success but flag that point totals are temporarily inconsistent
// until the repair loop replays the pending entries.
type AggregateUpdateError struct {
	UserID  uint
	Pending []uint // league ids left stale; models.LifetimeScope marks the profile total
	Err     error
}

func (e *AggregateUpdateError) Error() string {
	return fmt.Sprintf("user %d: %d point aggregate update(s) pending: %v", e.UserID, len(e.Pending), e.Err)
}

func (e *AggregateUpdateError) Unwrap() error {
	return e.Err
}
