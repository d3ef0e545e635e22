package domain

import "time"

// Role represents an operator role carried in access tokens
type Role string

const (
	RoleUser     Role = "USER"
	RoleOperator Role = "OPERATOR"
	RoleAdmin    Role = "ADMIN"
)

// AttemptType classifies an access log entry
type AttemptType string

const (
	AttemptScan         AttemptType = "SCAN"
	AttemptActivation   AttemptType = "ACTIVATION"
	AttemptStatusChange AttemptType = "STATUS_CHANGE"
)

// NotificationKind classifies a user-facing notification
type NotificationKind string

const (
	NotifyAccessDenied  NotificationKind = "ACCESS_DENIED"
	NotifyStatusChanged NotificationKind = "STATUS_CHANGED"
	NotifyDebt          NotificationKind = "DEBT"
	NotifyExpiryWarning NotificationKind = "EXPIRY_WARNING"
)

// User is the eligibility view of a user. Profile data lives elsewhere.
type User struct {
	ID               uint
	FullName         string
	MembershipType   string // "" when the user has no time-boxed membership
	Status           Status
	HasDebt          bool
	MembershipExpiry *time.Time
	AccessProfileID  *uint
}

// HasMembership reports whether the user holds a time-boxed membership
func (u *User) HasMembership() bool {
	return u.MembershipType != ""
}

// Card is the activatable credential behind QR tokens. One per user.
type Card struct {
	ID              uint
	UserID          uint
	CardNumber      string
	IssuedAt        time.Time
	ExpiresAt       time.Time // end of the activation window
	SecretRef       string
	LastToken       string
	LastTokenIssued *time.Time
	IsActive        bool
}

// UsableAt reports whether tokens bound to the card may resolve at t
func (c *Card) UsableAt(t time.Time) bool {
	return c.IsActive && t.Before(c.ExpiresAt)
}

// AccessZone is a physical area guarded by scanners
type AccessZone struct {
	ID          uint
	Name        string
	Description string
	ZoneType    string
}

// TimeWindow is a weekly recurring interval, minutes since midnight
type TimeWindow struct {
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
}

// Contains reports whether t (already in the profile's location) falls in
// the window. The start is inclusive and the end exclusive.
func (w TimeWindow) Contains(t time.Time) bool {
	if t.Weekday() != w.Weekday {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return m >= w.StartMinute && m < w.EndMinute
}

// AccessProfile is a named set of zones and weekly windows
type AccessProfile struct {
	ID           uint
	Name         string
	Description  string
	AllowedZones []uint
	Windows      []TimeWindow
}

// AllowsZone reports whether zoneID is in the allowed set
func (p *AccessProfile) AllowsZone(zoneID uint) bool {
	for _, z := range p.AllowedZones {
		if z == zoneID {
			return true
		}
	}
	return false
}

// AllowsTime reports whether t falls in any window
func (p *AccessProfile) AllowsTime(t time.Time) bool {
	for _, w := range p.Windows {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// AccessDecisionRecord is one immutable access log entry
type AccessDecisionRecord struct {
	ID              uint
	UserID          *uint
	ZoneID          *uint
	Timestamp       time.Time
	Granted         bool
	AttemptType     AttemptType
	ScannerID       string
	ScannerLocation string
	DenialReason    *string
	PreviousStatus  *Status
	UpdatedStatus   *Status
}

// Notification is a user-facing message
type Notification struct {
	ID        uint
	UserID    uint
	Kind      NotificationKind
	Title     string
	Message   string
	CreatedAt time.Time
}

// Scanner is a registered checkpoint device
type Scanner struct {
	ID       string
	Location string
	KeyHash  string
	IsActive bool
	LastSeen *time.Time
}
