package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"odeplac.in/pro/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20260115_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Client{}, &models.Supplier{},
					&models.Material{}, &models.TariffDocument{}, &models.Setting{})
			},
		},
		{
			ID: "20260116_create_obra_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Obra{}, &models.BudgetItem{}, &models.TimelineEntry{})
			},
		},
		{
			ID: "20260120_create_invoice_chain",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&models.Invoice{}, &models.ChainCounter{}); err != nil {
					return err
				}
				// Single counter row at the chain tip, created exactly once.
				return tx.Exec(
					"INSERT INTO chain_counters (id, last_sequence, last_hash, updated_at) VALUES (1, 0, '', NOW()) ON CONFLICT (id) DO NOTHING",
				).Error
			},
		},
		{
			ID: "20260203_create_chat_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Conversation{}, &models.ChatMessage{})
			},
		},
		{
			// The importer's natural key. NULLS NOT DISTINCT makes two rows
			// with the same name and no supplier conflict, so ON CONFLICT
			// fires for supplier-less imports as well.
			ID: "20260828_materials_name_supplier_unique",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec("DROP INDEX IF EXISTS idx_materials_name_supplier").Error; err != nil {
					return err
				}
				return tx.Exec(
					"CREATE UNIQUE INDEX idx_materials_name_supplier ON materials (name, supplier_id) NULLS NOT DISTINCT",
				).Error
			},
		},
	})

	return m.Migrate()
}
