package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&Dataset{},
		&Data{},
		&Term{},
	}
}

// Indexes returns index statements of all models.
func Indexes() []string {
	var res []string
	for _, m := range AllModels() {
		if idx, ok := m.(Indexer); ok {
			res = append(res, idx.IndexDDL()...)
		}
	}
	return res
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
