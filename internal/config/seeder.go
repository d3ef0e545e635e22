package config

import (
	"errors"
	"time"

	"saeta-access/internal/adapters/persistence/models"
	"saeta-access/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DevScannerID is the checkpoint scanner seeded in dev mode
const DevScannerID = "dev-gate-1"

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
	log *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config, log *zap.Logger) *Seeder {
	return &Seeder{db: db, cfg: cfg, log: log.Named("seeder")}
}

// Run executes all seeders. Development-only data is skipped in prod.
func (s *Seeder) Run() error {
	s.log.Info("running database seeders")

	if err := SeedMasterData(s.db, s.log); err != nil {
		return err
	}

	if s.cfg.IsDev() {
		if err := s.seedDevScanner(); err != nil {
			s.log.Warn("dev scanner seeder skipped", zap.Error(err))
		}
		if err := s.seedDevUsers(); err != nil {
			s.log.Warn("dev user seeder skipped", zap.Error(err))
		}
	}

	s.log.Info("database seeding completed")
	return nil
}

// seedDevScanner registers a scanner whose key comes from DEV_SCANNER_KEY.
// For development/testing only; production scanners are added with accessctl.
func (s *Seeder) seedDevScanner() error {
	var count int64
	s.db.Model(&models.Scanner{}).Where("id = ?", DevScannerID).Count(&count)
	if count > 0 {
		return nil
	}

	key := getEnv("DEV_SCANNER_KEY", "")
	if !password.ValidateKey(key) {
		return errors.New("DEV_SCANNER_KEY is missing or shorter than 16 characters")
	}
	hash, err := password.Hash(key)
	if err != nil {
		return err
	}

	scanner := &models.Scanner{
		ID:       DevScannerID,
		Location: "Development gate",
		KeyHash:  hash,
		IsActive: true,
	}
	if err := s.db.Create(scanner).Error; err != nil {
		return err
	}

	s.log.Info("dev scanner created", zap.String("scanner_id", scanner.ID))
	return nil
}

// seedDevUsers creates one user per interesting eligibility state
func (s *Seeder) seedDevUsers() error {
	var count int64
	s.db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return nil
	}

	var profile models.AccessProfile
	if err := s.db.Where("name = ?", "Staff").First(&profile).Error; err != nil {
		return err
	}

	nextMonth := time.Now().AddDate(0, 1, 0)
	lastWeek := time.Now().AddDate(0, 0, -7)
	users := []models.User{
		{FullName: "Pending Student", MembershipType: "student", Status: "PENDING", MembershipExpiry: &nextMonth},
		{FullName: "Active Staff", Status: "ACTIVE", AccessProfileID: &profile.ID},
		{FullName: "Club Member In Debt", MembershipType: "club", Status: "ACTIVE", HasDebt: true, MembershipExpiry: &nextMonth},
		{FullName: "Lapsed Member", MembershipType: "club", Status: "ACTIVE", MembershipExpiry: &lastWeek},
		{FullName: "Suspended User", Status: "SUSPENDED"},
	}

	for i := range users {
		if err := s.db.Create(&users[i]).Error; err != nil {
			return err
		}
		s.log.Info("dev user created", zap.Uint("user_id", users[i].ID), zap.String("status", users[i].Status))
	}
	return nil
}
