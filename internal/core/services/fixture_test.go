package services_test

import (
	"context"
	"testing"
	"time"

	"saeta-access/internal/adapters/persistence/memory"
	"saeta-access/internal/config"
	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"
	"saeta-access/internal/pkg/clock"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-qr-secret"

// monday10 is Monday 2024-03-04 10:00 UTC
var monday10 = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	clock    *clock.Fixed
	cfg      config.AccessConfig
	notifier *services.NotificationService
	tokens   *services.TokenService
	status   *services.StatusService
	access   *services.AccessService
	cards    *services.CardService
	scanners *services.ScannerService
	sweeps   *services.SweepService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := zaptest.NewLogger(t)
	store := memory.New()
	clk := clock.NewFixed(monday10)
	cfg := config.DefaultAccessConfig(testSecret)

	svc := services.NewContainer(store, cfg, clk, log)

	return &fixture{
		ctx:      context.Background(),
		store:    store,
		clock:    clk,
		cfg:      cfg,
		notifier: svc.Notifier,
		tokens:   svc.Tokens,
		status:   svc.Status,
		access:   svc.Access,
		cards:    svc.Cards,
		scanners: svc.Scanners,
		sweeps:   svc.Sweeps,
	}
}

// user stores a user with the given status and no membership
func (f *fixture) user(id uint, status domain.Status) *domain.User {
	u := &domain.User{ID: id, FullName: "User", Status: status}
	f.store.PutUser(u)
	return u
}

// activeCard gives the user an activated card
func (f *fixture) activeCard(t *testing.T, userID uint) *domain.Card {
	t.Helper()
	card, _, err := f.cards.CreateCard(f.ctx, userID)
	require.NoError(t, err)
	card, err = f.cards.ActivateCard(f.ctx, card.ID)
	require.NoError(t, err)
	return card
}

// token issues a token for a user with an active card
func (f *fixture) token(t *testing.T, userID uint) string {
	t.Helper()
	if f.store.CardOf(userID) == nil || !f.store.CardOf(userID).UsableAt(f.clock.Now()) {
		f.activeCard(t, userID)
	}
	issued, err := f.tokens.IssueToken(f.ctx, userID)
	require.NoError(t, err)
	return issued.Token
}

// officeProfile allows zone 1 on Mondays 09:00-17:00
func (f *fixture) officeProfile(t *testing.T) uint {
	t.Helper()
	w, err := domain.NewTimeWindow("MONDAY", "09:00", "17:00")
	require.NoError(t, err)

	f.store.PutZone(&domain.AccessZone{ID: 1, Name: "Office"})
	f.store.PutZone(&domain.AccessZone{ID: 2, Name: "Server room"})
	f.store.PutProfile(&domain.AccessProfile{
		ID:           10,
		Name:         "Office hours",
		AllowedZones: []uint{1},
		Windows:      []domain.TimeWindow{w},
	})
	return 10
}

func (f *fixture) notificationsOf(userID uint) []*domain.Notification {
	var out []*domain.Notification
	for _, n := range f.store.SentNotifications() {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func uintPtr(v uint) *uint { return &v }

func timePtr(t time.Time) *time.Time { return &t }
