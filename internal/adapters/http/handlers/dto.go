package handlers

import (
	"time"

	"saeta-access/internal/core/domain"
)

// CardResponse is the public view of a card. The secret reference and the
// last token are never returned.
type CardResponse struct {
	ID              uint       `json:"id"`
	UserID          uint       `json:"user_id"`
	CardNumber      string     `json:"card_number"`
	IssuedAt        time.Time  `json:"issued_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	IsActive        bool       `json:"is_active"`
	LastTokenIssued *time.Time `json:"last_token_issued,omitempty"`
}

func toCardResponse(c *domain.Card) *CardResponse {
	return &CardResponse{
		ID:              c.ID,
		UserID:          c.UserID,
		CardNumber:      c.CardNumber,
		IssuedAt:        c.IssuedAt,
		ExpiresAt:       c.ExpiresAt,
		IsActive:        c.IsActive,
		LastTokenIssued: c.LastTokenIssued,
	}
}

// AccessLogResponse is one access log entry
type AccessLogResponse struct {
	ID              uint           `json:"id"`
	UserID          *uint          `json:"user_id"`
	ZoneID          *uint          `json:"zone_id"`
	Timestamp       time.Time      `json:"timestamp"`
	Granted         bool           `json:"granted"`
	AttemptType     string         `json:"attempt_type"`
	ScannerID       string         `json:"scanner_id"`
	ScannerLocation string         `json:"scanner_location,omitempty"`
	DenialReason    *string        `json:"denial_reason,omitempty"`
	PreviousStatus  *domain.Status `json:"previous_status,omitempty"`
	UpdatedStatus   *domain.Status `json:"updated_status,omitempty"`
}

func toAccessLogResponse(r *domain.AccessDecisionRecord) *AccessLogResponse {
	return &AccessLogResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		ZoneID:          r.ZoneID,
		Timestamp:       r.Timestamp,
		Granted:         r.Granted,
		AttemptType:     string(r.AttemptType),
		ScannerID:       r.ScannerID,
		ScannerLocation: r.ScannerLocation,
		DenialReason:    r.DenialReason,
		PreviousStatus:  r.PreviousStatus,
		UpdatedStatus:   r.UpdatedStatus,
	}
}

func toAccessLogResponses(records []*domain.AccessDecisionRecord) []*AccessLogResponse {
	out := make([]*AccessLogResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toAccessLogResponse(r))
	}
	return out
}
