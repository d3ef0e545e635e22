package services

import (
	"time"

	"saeta-access/internal/core/domain"
)

// Denial reasons recorded on access logs and sent to users
const (
	ReasonInvalidToken  = "invalid or expired token"
	ReasonDebt          = "outstanding debt"
	ReasonStatusPrefix  = "user status: "
	ReasonZoneForbidden = "no access rights to this zone"
	ReasonOutsideWindow = "outside of allowed time period"
)

// Evaluation is the outcome of the rule chain for one attempt
type Evaluation struct {
	Granted bool
	Reason  string
	// Target is the status the user must move to, nil for none
	Target *domain.Status
}

// EvaluateAccess runs the fixed rule chain. It does not touch storage.
// profile may be nil; local is the attempt time in the configured location.
func EvaluateAccess(user *domain.User, profile *domain.AccessProfile, zoneID *uint, local time.Time) Evaluation {
	if user.HasDebt && user.HasMembership() {
		ev := Evaluation{Reason: ReasonDebt}
		if user.Status != domain.StatusDebt {
			ev.Target = domain.StatusDebt.Ptr()
		}
		return ev
	}

	if user.Status.BlocksAccess() {
		return Evaluation{Reason: ReasonStatusPrefix + user.Status.String()}
	}

	if zoneID != nil && profile != nil {
		if !profile.AllowsZone(*zoneID) {
			return Evaluation{Reason: ReasonZoneForbidden}
		}
		if !profile.AllowsTime(local) {
			return Evaluation{Reason: ReasonOutsideWindow}
		}
	}

	ev := Evaluation{Granted: true}
	switch user.Status {
	case domain.StatusPending:
		ev.Target = domain.StatusActive.Ptr()
	case domain.StatusExpired:
		if user.MembershipExpiry != nil && user.MembershipExpiry.After(local) {
			ev.Target = domain.StatusActive.Ptr()
		}
	}
	return ev
}
