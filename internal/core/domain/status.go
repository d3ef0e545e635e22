package domain

import "strings"

// Status is the membership status of a user
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusExpired   Status = "EXPIRED"
	StatusDebt      Status = "DEBT"
)

// AllStatuses lists every known status in display order
var AllStatuses = []Status{
	StatusPending,
	StatusActive,
	StatusInactive,
	StatusSuspended,
	StatusExpired,
	StatusDebt,
}

// automaticTransitions lists the status changes the system may apply on its
// own. Operators can move a user between any two statuses.
var automaticTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusActive: true, StatusDebt: true},
	StatusActive:    {StatusExpired: true, StatusDebt: true},
	StatusExpired:   {StatusActive: true, StatusDebt: true},
	StatusInactive:  {StatusDebt: true},
	StatusSuspended: {StatusDebt: true},
	StatusDebt:      {},
}

// ParseStatus converts a status name into a Status
func ParseStatus(name string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(name)))
	if !s.IsValid() {
		return "", ErrStatusNotFound
	}
	return s, nil
}

// IsValid reports whether s is one of the known statuses
func (s Status) IsValid() bool {
	_, ok := automaticTransitions[s]
	return ok
}

// String returns the status name
func (s Status) String() string {
	return string(s)
}

// BlocksAccess reports whether the status denies access outright
func (s Status) BlocksAccess() bool {
	return s == StatusInactive || s == StatusSuspended
}

// CanTransitionAutomatically reports whether the system may move a user from
// s to next without an operator
func (s Status) CanTransitionAutomatically(next Status) bool {
	return automaticTransitions[s][next]
}

// Ptr returns a pointer to a copy of s
func (s Status) Ptr() *Status {
	return &s
}
