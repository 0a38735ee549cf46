package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/loantracker/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250812_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Identity{}, &models.Profile{}, &models.Visit{})
			},
		},
		{
			ID: "20250812_create_audit_logs",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.AuditLog{})
			},
		},
		{
			ID: "20250819_visit_indexes",
			Migrate: func(tx *gorm.DB) error {
				// Search paths: agent+loan for "my visits", loan alone for manager search.
				if err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_visits_agent_loan ON visits (agent_id, loan_number)").Error; err != nil {
					return err
				}
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_visits_visited_at ON visits (visited_at DESC)").Error
			},
		},
		{
			ID: "20250902_add_ptp_fields",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec("ALTER TABLE visits ADD COLUMN IF NOT EXISTS ptp_date text").Error; err != nil {
					return err
				}
				return tx.Exec("ALTER TABLE visits ADD COLUMN IF NOT EXISTS ptp_amount numeric").Error
			},
		},
	})

	return m.Migrate()
}
