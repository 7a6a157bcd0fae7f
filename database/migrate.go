package database

import (
	"fmt"

	"taskboard-backend/models"
)

// AutoMigrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - CHECK constraints for the closed status/priority/role sets
// - Foreign key tasks.owner_id → users.id with ON DELETE CASCADE
// The unique index on idempotency_records.scoped_key comes from the model tag
// and is load-bearing: it is what serializes concurrent idempotent creates.
func AutoMigrate() error {
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.IdempotencyRecord{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	// Each ALTER runs on its own; re-running migrations hits
	// "already exists" and that's fine.
	constraints := []string{
		`ALTER TABLE users ADD CONSTRAINT chk_users_role
		   CHECK (role IN ('user','premium','admin'))`,
		`ALTER TABLE tasks ADD CONSTRAINT chk_tasks_status
		   CHECK (status IN ('pending','in_progress','completed'))`,
		`ALTER TABLE tasks ADD CONSTRAINT chk_tasks_priority
		   CHECK (priority IN ('low','medium','high'))`,
		`ALTER TABLE tasks ADD CONSTRAINT fk_tasks_owner
		   FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE`,
	}
	for _, stmt := range constraints {
		_ = DB.Exec(stmt).Error
	}
	return nil
}
