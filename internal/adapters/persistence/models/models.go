package models

import (
	"time"

	"saeta-access/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Users & Cards
// ============================================================

// User represents users table. Only the columns the access core needs are
// mapped; profile data is owned by the user management service.
type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	FullName         string         `gorm:"size:200" json:"full_name"`
	Email            string         `gorm:"size:100;index" json:"email"`
	MembershipType   string         `gorm:"size:30" json:"membership_type"`
	Status           string         `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	HasDebt          bool           `gorm:"default:false" json:"has_debt"`
	MembershipExpiry *time.Time     `gorm:"index" json:"membership_expiry"`
	AccessProfileID  *uint          `gorm:"index" json:"access_profile_id"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// ToDomain converts the row into the eligibility view
func (u *User) ToDomain() *domain.User {
	return &domain.User{
		ID:               u.ID,
		FullName:         u.FullName,
		MembershipType:   u.MembershipType,
		Status:           domain.Status(u.Status),
		HasDebt:          u.HasDebt,
		MembershipExpiry: u.MembershipExpiry,
		AccessProfileID:  u.AccessProfileID,
	}
}

// IdentityCard represents identity_cards table
type IdentityCard struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	CardNumber      string     `gorm:"size:64;uniqueIndex;not null" json:"card_number"`
	IssueDate       time.Time  `gorm:"not null" json:"issue_date"`
	ExpiryDate      time.Time  `gorm:"not null" json:"expiry_date"`
	QRSecret        string     `gorm:"size:64;not null" json:"-"`
	LastQRCode      string     `gorm:"type:text" json:"-"`
	LastQRTimestamp *time.Time `json:"last_qr_timestamp"`
	IsActive        bool       `gorm:"default:false" json:"is_active"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (IdentityCard) TableName() string {
	return "identity_cards"
}

// ToDomain converts the row into a domain card
func (c *IdentityCard) ToDomain() *domain.Card {
	return &domain.Card{
		ID:              c.ID,
		UserID:          c.UserID,
		CardNumber:      c.CardNumber,
		IssuedAt:        c.IssueDate,
		ExpiresAt:       c.ExpiryDate,
		SecretRef:       c.QRSecret,
		LastToken:       c.LastQRCode,
		LastTokenIssued: c.LastQRTimestamp,
		IsActive:        c.IsActive,
	}
}

// IdentityCardFromDomain converts a domain card into a row
func IdentityCardFromDomain(c *domain.Card) *IdentityCard {
	return &IdentityCard{
		ID:              c.ID,
		UserID:          c.UserID,
		CardNumber:      c.CardNumber,
		IssueDate:       c.IssuedAt,
		ExpiryDate:      c.ExpiresAt,
		QRSecret:        c.SecretRef,
		LastQRCode:      c.LastToken,
		LastQRTimestamp: c.LastTokenIssued,
		IsActive:        c.IsActive,
	}
}

// ============================================================
// Zones & Profiles
// ============================================================

// AccessZone represents access_zones table
type AccessZone struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ZoneType    string    `gorm:"size:30" json:"zone_type"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AccessZone) TableName() string {
	return "access_zones"
}

// AccessProfile represents access_profiles table
type AccessProfile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AccessProfile) TableName() string {
	return "access_profiles"
}

// ProfileZone represents profile_zones join table
type ProfileZone struct {
	ProfileID uint `gorm:"primaryKey" json:"profile_id"`
	ZoneID    uint `gorm:"primaryKey" json:"zone_id"`
}

func (ProfileZone) TableName() string {
	return "profile_zones"
}

// ProfileTimeRestriction represents profile_time_restrictions table.
// Times are "HH:MM" in the configured location.
type ProfileTimeRestriction struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProfileID uint   `gorm:"not null;index" json:"profile_id"`
	DayOfWeek string `gorm:"size:10;not null" json:"day_of_week"` // MONDAY .. SUNDAY
	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`
}

func (ProfileTimeRestriction) TableName() string {
	return "profile_time_restrictions"
}

// ============================================================
// Audit & Notifications
// ============================================================

// AccessLog represents access_logs table. Rows are append-only.
type AccessLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          *uint     `gorm:"index" json:"user_id"`
	ZoneID          *uint     `gorm:"index" json:"zone_id"`
	AccessTime      time.Time `gorm:"not null;index" json:"access_time"`
	AccessGranted   bool      `json:"access_granted"`
	AccessType      string    `gorm:"size:20;not null" json:"access_type"`
	ScannerID       string    `gorm:"size:64" json:"scanner_id"`
	ScannerLocation string    `gorm:"size:200" json:"scanner_location"`
	ReasonDenied    *string   `gorm:"size:255" json:"reason_denied"`
	PreviousStatus  *string   `gorm:"size:20" json:"previous_status"`
	UpdatedStatus   *string   `gorm:"size:20" json:"updated_status"`
}

func (AccessLog) TableName() string {
	return "access_logs"
}

// AccessLogFromDomain converts a decision record into a row
func AccessLogFromDomain(r *domain.AccessDecisionRecord) *AccessLog {
	return &AccessLog{
		ID:              r.ID,
		UserID:          r.UserID,
		ZoneID:          r.ZoneID,
		AccessTime:      r.Timestamp,
		AccessGranted:   r.Granted,
		AccessType:      string(r.AttemptType),
		ScannerID:       r.ScannerID,
		ScannerLocation: r.ScannerLocation,
		ReasonDenied:    r.DenialReason,
		PreviousStatus:  statusString(r.PreviousStatus),
		UpdatedStatus:   statusString(r.UpdatedStatus),
	}
}

// ToDomain converts the row into a decision record
func (l *AccessLog) ToDomain() *domain.AccessDecisionRecord {
	return &domain.AccessDecisionRecord{
		ID:              l.ID,
		UserID:          l.UserID,
		ZoneID:          l.ZoneID,
		Timestamp:       l.AccessTime,
		Granted:         l.AccessGranted,
		AttemptType:     domain.AttemptType(l.AccessType),
		ScannerID:       l.ScannerID,
		ScannerLocation: l.ScannerLocation,
		DenialReason:    l.ReasonDenied,
		PreviousStatus:  statusPtr(l.PreviousStatus),
		UpdatedStatus:   statusPtr(l.UpdatedStatus),
	}
}

// Notification represents notifications table
type Notification struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;index" json:"user_id"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	Message          string     `gorm:"type:text" json:"message"`
	NotificationType string     `gorm:"size:30;not null" json:"notification_type"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	IsRead           bool       `gorm:"default:false" json:"is_read"`
	ReadAt           *time.Time `json:"read_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Scanner represents scanners table
type Scanner struct {
	ID        string     `gorm:"primaryKey;size:64" json:"id"`
	Location  string     `gorm:"size:200" json:"location"`
	KeyHash   string     `gorm:"size:255;not null" json:"-"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	LastSeen  *time.Time `json:"last_seen"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Scanner) TableName() string {
	return "scanners"
}

// ToDomain converts the row into a domain scanner
func (s *Scanner) ToDomain() *domain.Scanner {
	return &domain.Scanner{
		ID:       s.ID,
		Location: s.Location,
		KeyHash:  s.KeyHash,
		IsActive: s.IsActive,
		LastSeen: s.LastSeen,
	}
}

func statusString(s *domain.Status) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func statusPtr(s *string) *domain.Status {
	if s == nil {
		return nil
	}
	v := domain.Status(*s)
	return &v
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all access tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&IdentityCard{},
		&AccessZone{},
		&AccessProfile{},
		&ProfileZone{},
		&ProfileTimeRestriction{},
		&AccessLog{},
		&Notification{},
		&Scanner{},
	)
}
