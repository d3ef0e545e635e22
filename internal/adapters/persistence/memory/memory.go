// Package memory is an in-process implementation of services.Store. Atomic
// units are serialised by one mutex and work on a copy of the data that
// replaces the committed copy only when the unit succeeds.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"
)

type state struct {
	users         map[uint]*domain.User
	cards         map[uint]*domain.Card
	zones         map[uint]*domain.AccessZone
	profiles      map[uint]*domain.AccessProfile
	scanners      map[string]*domain.Scanner
	logs          []*domain.AccessDecisionRecord
	notifications []*domain.Notification

	nextCardID         uint
	nextLogID          uint
	nextNotificationID uint
}

func newState() *state {
	return &state{
		users:    make(map[uint]*domain.User),
		cards:    make(map[uint]*domain.Card),
		zones:    make(map[uint]*domain.AccessZone),
		profiles: make(map[uint]*domain.AccessProfile),
		scanners: make(map[string]*domain.Scanner),
	}
}

// clone copies the containers. Entries are never mutated in place, so the
// pointers can be shared.
func (st *state) clone() *state {
	c := &state{
		users:              make(map[uint]*domain.User, len(st.users)),
		cards:              make(map[uint]*domain.Card, len(st.cards)),
		zones:              make(map[uint]*domain.AccessZone, len(st.zones)),
		profiles:           make(map[uint]*domain.AccessProfile, len(st.profiles)),
		scanners:           make(map[string]*domain.Scanner, len(st.scanners)),
		logs:               append([]*domain.AccessDecisionRecord(nil), st.logs...),
		notifications:      append([]*domain.Notification(nil), st.notifications...),
		nextCardID:         st.nextCardID,
		nextLogID:          st.nextLogID,
		nextNotificationID: st.nextNotificationID,
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.cards {
		c.cards[k] = v
	}
	for k, v := range st.zones {
		c.zones[k] = v
	}
	for k, v := range st.profiles {
		c.profiles[k] = v
	}
	for k, v := range st.scanners {
		c.scanners[k] = v
	}
	return c
}

type faults struct {
	mu  sync.Mutex
	ops map[string]error
}

// Store is an in-memory services.Store
type Store struct {
	mu     *sync.Mutex
	st     *state
	inTx   bool
	faults *faults
}

// New creates an empty store
func New() *Store {
	return &Store{
		mu:     &sync.Mutex{},
		st:     newState(),
		faults: &faults{ops: make(map[string]error)},
	}
}

var _ services.Store = (*Store)(nil)

// FailOn makes the operation op fail with err. id narrows the fault to one
// entity (user id for user operations); 0 matches every entity.
// Operations: "users.update_status", "cards.save", "access_logs.append",
// "notifications.create".
func (s *Store) FailOn(op string, id uint, err error) {
	s.faults.mu.Lock()
	s.faults.ops[faultKey(op, id)] = err
	s.faults.mu.Unlock()
}

// ClearFaults removes every injected fault
func (s *Store) ClearFaults() {
	s.faults.mu.Lock()
	s.faults.ops = make(map[string]error)
	s.faults.mu.Unlock()
}

func (s *Store) fault(op string, id uint) error {
	s.faults.mu.Lock()
	defer s.faults.mu.Unlock()
	if err, ok := s.faults.ops[faultKey(op, id)]; ok {
		return err
	}
	return s.faults.ops[faultKey(op, 0)]
}

func faultKey(op string, id uint) string {
	return fmt.Sprintf("%s/%d", op, id)
}

// with runs fn against the current data, locking unless inside Atomic
func (s *Store) with(fn func(st *state) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

// Atomic runs fn on a private copy and commits it only if fn succeeds
func (s *Store) Atomic(ctx context.Context, fn func(tx services.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	work := s.st.clone()
	tx := &Store{mu: s.mu, st: work, inTx: true, faults: s.faults}
	if err := fn(tx); err != nil {
		return err
	}
	*s.st = *work
	return nil
}

func (s *Store) Users() services.UserStore                 { return userStore{s} }
func (s *Store) Cards() services.CardStore                 { return cardStore{s} }
func (s *Store) Zones() services.ZoneStore                 { return zoneStore{s} }
func (s *Store) Profiles() services.ProfileStore           { return profileStore{s} }
func (s *Store) AccessLogs() services.AccessLogStore       { return accessLogStore{s} }
func (s *Store) Notifications() services.NotificationStore { return notificationStore{s} }
func (s *Store) Scanners() services.ScannerStore           { return scannerStore{s} }

// ============================================================
// Seeding and inspection helpers
// ============================================================

// PutUser inserts or replaces a user
func (s *Store) PutUser(u *domain.User) {
	_ = s.with(func(st *state) error {
		c := *u
		st.users[u.ID] = &c
		return nil
	})
}

// PutCard inserts or replaces a card. A zero ID is assigned.
func (s *Store) PutCard(c *domain.Card) {
	_ = s.with(func(st *state) error {
		if c.ID == 0 {
			st.nextCardID++
			c.ID = st.nextCardID
		} else if c.ID > st.nextCardID {
			st.nextCardID = c.ID
		}
		cp := *c
		st.cards[c.ID] = &cp
		return nil
	})
}

// PutZone inserts or replaces a zone
func (s *Store) PutZone(z *domain.AccessZone) {
	_ = s.with(func(st *state) error {
		c := *z
		st.zones[z.ID] = &c
		return nil
	})
}

// PutProfile inserts or replaces an access profile
func (s *Store) PutProfile(p *domain.AccessProfile) {
	_ = s.with(func(st *state) error {
		st.profiles[p.ID] = copyProfile(p)
		return nil
	})
}

// PutScanner inserts or replaces a scanner
func (s *Store) PutScanner(sc *domain.Scanner) {
	_ = s.with(func(st *state) error {
		c := *sc
		st.scanners[sc.ID] = &c
		return nil
	})
}

// User returns a copy of the stored user or nil
func (s *Store) User(id uint) *domain.User {
	var out *domain.User
	_ = s.with(func(st *state) error {
		if u, ok := st.users[id]; ok {
			c := *u
			out = &c
		}
		return nil
	})
	return out
}

// CardOf returns a copy of the user's card or nil
func (s *Store) CardOf(userID uint) *domain.Card {
	var out *domain.Card
	_ = s.with(func(st *state) error {
		if c := findCardByUser(st, userID); c != nil {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out
}

// Logs returns every access log record in insertion order
func (s *Store) Logs() []*domain.AccessDecisionRecord {
	var out []*domain.AccessDecisionRecord
	_ = s.with(func(st *state) error {
		for _, r := range st.logs {
			c := *r
			out = append(out, &c)
		}
		return nil
	})
	return out
}

// SentNotifications returns every notification in insertion order
func (s *Store) SentNotifications() []*domain.Notification {
	var out []*domain.Notification
	_ = s.with(func(st *state) error {
		for _, n := range st.notifications {
			c := *n
			out = append(out, &c)
		}
		return nil
	})
	return out
}

// ============================================================
// Users
// ============================================================

type userStore struct{ s *Store }

func (u userStore) GetByID(_ context.Context, id uint) (*domain.User, error) {
	var out *domain.User
	err := u.s.with(func(st *state) error {
		v, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		c := *v
		out = &c
		return nil
	})
	return out, err
}

// GetForUpdate needs no extra locking: Atomic already serialises units
func (u userStore) GetForUpdate(ctx context.Context, id uint) (*domain.User, error) {
	return u.GetByID(ctx, id)
}

func (u userStore) UpdateStatus(_ context.Context, id uint, status domain.Status) error {
	if err := u.s.fault("users.update_status", id); err != nil {
		return err
	}
	return u.s.with(func(st *state) error {
		v, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		c := *v
		c.Status = status
		st.users[id] = &c
		return nil
	})
}

func (u userStore) FindByStatusExpiredBefore(_ context.Context, status domain.Status, t time.Time) ([]*domain.User, error) {
	return u.filter(func(v *domain.User) bool {
		return v.Status == status && v.MembershipExpiry != nil && v.MembershipExpiry.Before(t)
	}, byID)
}

func (u userStore) FindExpiringBetween(_ context.Context, from, to time.Time) ([]*domain.User, error) {
	return u.filter(func(v *domain.User) bool {
		if v.MembershipExpiry == nil {
			return false
		}
		e := *v.MembershipExpiry
		return !e.Before(from) && e.Before(to)
	}, byExpiry)
}

func (u userStore) filter(keep func(*domain.User) bool, less func(a, b *domain.User) bool) ([]*domain.User, error) {
	var out []*domain.User
	err := u.s.with(func(st *state) error {
		for _, v := range st.users {
			if keep(v) {
				c := *v
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, err
}

func byID(a, b *domain.User) bool { return a.ID < b.ID }

func byExpiry(a, b *domain.User) bool {
	if a.MembershipExpiry.Equal(*b.MembershipExpiry) {
		return a.ID < b.ID
	}
	return a.MembershipExpiry.Before(*b.MembershipExpiry)
}

// ============================================================
// Cards
// ============================================================

type cardStore struct{ s *Store }

func (c cardStore) GetByID(_ context.Context, id uint) (*domain.Card, error) {
	var out *domain.Card
	err := c.s.with(func(st *state) error {
		v, ok := st.cards[id]
		if !ok {
			return domain.ErrCardNotFound
		}
		cp := *v
		out = &cp
		return nil
	})
	return out, err
}

func (c cardStore) GetByUserID(_ context.Context, userID uint) (*domain.Card, error) {
	var out *domain.Card
	err := c.s.with(func(st *state) error {
		v := findCardByUser(st, userID)
		if v == nil {
			return domain.ErrCardNotFound
		}
		cp := *v
		out = &cp
		return nil
	})
	return out, err
}

func (c cardStore) ExistsByCardNumber(_ context.Context, number string) (bool, error) {
	found := false
	err := c.s.with(func(st *state) error {
		for _, v := range st.cards {
			if v.CardNumber == number {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (c cardStore) Create(_ context.Context, card *domain.Card) error {
	return c.s.with(func(st *state) error {
		if findCardByUser(st, card.UserID) != nil {
			return fmt.Errorf("create card for user %d: duplicate user_id", card.UserID)
		}
		for _, v := range st.cards {
			if v.CardNumber == card.CardNumber {
				return fmt.Errorf("create card: duplicate card_number %s", card.CardNumber)
			}
		}
		st.nextCardID++
		card.ID = st.nextCardID
		cp := *card
		st.cards[card.ID] = &cp
		return nil
	})
}

func (c cardStore) Save(_ context.Context, card *domain.Card) error {
	if err := c.s.fault("cards.save", card.ID); err != nil {
		return err
	}
	return c.s.with(func(st *state) error {
		if _, ok := st.cards[card.ID]; !ok {
			return domain.ErrCardNotFound
		}
		cp := *card
		st.cards[card.ID] = &cp
		return nil
	})
}

func findCardByUser(st *state, userID uint) *domain.Card {
	for _, v := range st.cards {
		if v.UserID == userID {
			return v
		}
	}
	return nil
}

// ============================================================
// Zones & Profiles
// ============================================================

type zoneStore struct{ s *Store }

func (z zoneStore) Exists(_ context.Context, id uint) (bool, error) {
	found := false
	err := z.s.with(func(st *state) error {
		_, found = st.zones[id]
		return nil
	})
	return found, err
}

type profileStore struct{ s *Store }

func (p profileStore) GetByID(_ context.Context, id uint) (*domain.AccessProfile, error) {
	var out *domain.AccessProfile
	err := p.s.with(func(st *state) error {
		v, ok := st.profiles[id]
		if !ok {
			return domain.ErrProfileNotFound
		}
		out = copyProfile(v)
		return nil
	})
	return out, err
}

func copyProfile(p *domain.AccessProfile) *domain.AccessProfile {
	c := *p
	c.AllowedZones = append([]uint(nil), p.AllowedZones...)
	c.Windows = append([]domain.TimeWindow(nil), p.Windows...)
	return &c
}

// ============================================================
// Access logs & Notifications
// ============================================================

type accessLogStore struct{ s *Store }

func (a accessLogStore) Append(_ context.Context, record *domain.AccessDecisionRecord) error {
	if err := a.s.fault("access_logs.append", 0); err != nil {
		return err
	}
	return a.s.with(func(st *state) error {
		st.nextLogID++
		record.ID = st.nextLogID
		c := *record
		st.logs = append(st.logs, &c)
		return nil
	})
}

func (a accessLogStore) ListByUser(_ context.Context, userID uint, limit int) ([]*domain.AccessDecisionRecord, error) {
	var out []*domain.AccessDecisionRecord
	err := a.s.with(func(st *state) error {
		for _, r := range st.logs {
			if r.UserID != nil && *r.UserID == userID {
				c := *r
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (a accessLogStore) ListBetween(_ context.Context, from, to time.Time) ([]*domain.AccessDecisionRecord, error) {
	var out []*domain.AccessDecisionRecord
	err := a.s.with(func(st *state) error {
		for _, r := range st.logs {
			if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
				c := *r
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, err
}

type notificationStore struct{ s *Store }

func (n notificationStore) Create(_ context.Context, notification *domain.Notification) error {
	if err := n.s.fault("notifications.create", notification.UserID); err != nil {
		return err
	}
	return n.s.with(func(st *state) error {
		st.nextNotificationID++
		notification.ID = st.nextNotificationID
		c := *notification
		st.notifications = append(st.notifications, &c)
		return nil
	})
}

// ============================================================
// Scanners
// ============================================================

type scannerStore struct{ s *Store }

func (sc scannerStore) GetByID(_ context.Context, id string) (*domain.Scanner, error) {
	var out *domain.Scanner
	err := sc.s.with(func(st *state) error {
		v, ok := st.scanners[id]
		if !ok {
			return domain.ErrScannerNotFound
		}
		c := *v
		out = &c
		return nil
	})
	return out, err
}

func (sc scannerStore) Create(_ context.Context, scanner *domain.Scanner) error {
	return sc.s.with(func(st *state) error {
		if _, ok := st.scanners[scanner.ID]; ok {
			return fmt.Errorf("create scanner: duplicate id %s", scanner.ID)
		}
		c := *scanner
		st.scanners[scanner.ID] = &c
		return nil
	})
}

func (sc scannerStore) Touch(_ context.Context, id string, seen time.Time) error {
	return sc.s.with(func(st *state) error {
		v, ok := st.scanners[id]
		if !ok {
			return domain.ErrScannerNotFound
		}
		c := *v
		c.LastSeen = &seen
		st.scanners[id] = &c
		return nil
	})
}
