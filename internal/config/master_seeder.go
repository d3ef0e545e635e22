package config

import (
	"errors"

	"saeta-access/internal/adapters/persistence/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedWindow struct {
	day, start, end string
}

type seedProfile struct {
	name        string
	description string
	zones       []string
	windows     []seedWindow
}

var seedZones = []models.AccessZone{
	{Name: "Main Entrance", Description: "Building main entrance", ZoneType: "ENTRANCE"},
	{Name: "Library", Description: "Library reading rooms", ZoneType: "FACILITY"},
	{Name: "Gym", Description: "Sports club gym", ZoneType: "CLUB"},
	{Name: "Server Room", Description: "Restricted data center", ZoneType: "RESTRICTED"},
}

var seedProfiles = []seedProfile{
	{
		name:        "Student",
		description: "Weekday campus access",
		zones:       []string{"Main Entrance", "Library"},
		windows:     weekdays("07:00", "22:00"),
	},
	{
		name:        "Staff",
		description: "Extended access for staff",
		zones:       []string{"Main Entrance", "Library", "Server Room"},
		windows:     append(weekdays("06:00", "23:00"), seedWindow{"SATURDAY", "08:00", "14:00"}),
	},
	{
		name:        "Club",
		description: "Sports club members",
		zones:       []string{"Main Entrance", "Gym"},
		windows: append(weekdays("06:00", "22:00"),
			seedWindow{"SATURDAY", "08:00", "20:00"},
			seedWindow{"SUNDAY", "08:00", "14:00"},
		),
	},
}

func weekdays(start, end string) []seedWindow {
	days := []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"}
	out := make([]seedWindow, 0, len(days))
	for _, d := range days {
		out = append(out, seedWindow{d, start, end})
	}
	return out
}

// SeedMasterData seeds access zones and profiles. Existing rows are kept.
func SeedMasterData(db *gorm.DB, log *zap.Logger) error {
	zoneIDs, err := seedAccessZones(db, log)
	if err != nil {
		return err
	}
	if err := seedAccessProfiles(db, log, zoneIDs); err != nil {
		return err
	}

	log.Info("master data seeded")
	return nil
}

func seedAccessZones(db *gorm.DB, log *zap.Logger) (map[string]uint, error) {
	ids := make(map[string]uint, len(seedZones))
	for _, z := range seedZones {
		var existing models.AccessZone
		err := db.Where("name = ?", z.Name).First(&existing).Error
		if err == nil {
			ids[z.Name] = existing.ID
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		zone := z
		if err := db.Create(&zone).Error; err != nil {
			return nil, err
		}
		ids[zone.Name] = zone.ID
		log.Info("created access zone", zap.String("name", zone.Name))
	}
	return ids, nil
}

func seedAccessProfiles(db *gorm.DB, log *zap.Logger, zoneIDs map[string]uint) error {
	for _, p := range seedProfiles {
		var existing models.AccessProfile
		err := db.Where("name = ?", p.name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			profile := models.AccessProfile{Name: p.name, Description: p.description}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			for _, name := range p.zones {
				link := models.ProfileZone{ProfileID: profile.ID, ZoneID: zoneIDs[name]}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
			}
			for _, w := range p.windows {
				r := models.ProfileTimeRestriction{ProfileID: profile.ID, DayOfWeek: w.day, StartTime: w.start, EndTime: w.end}
				if err := tx.Create(&r).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		log.Info("created access profile", zap.String("name", p.name), zap.Int("zones", len(p.zones)))
	}
	return nil
}
