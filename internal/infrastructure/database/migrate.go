package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/janhq/pm-assistant/internal/infrastructure/database/entities"
)

// Models lists every table owned by the assistant, parents before children.
func Models() []any {
	return []any{
		&entities.Project{},
		&entities.Employee{},
		&entities.Task{},
		&entities.Sprint{},
		&entities.ActiveProject{},
		&entities.Message{},
	}
}

// lookupIndexes back the per-session and per-project filters used on every turn.
var lookupIndexes = []struct {
	model any
	name  string
}{
	{&entities.Message{}, "idx_message_session"},
	{&entities.Task{}, "idx_task_project"},
	{&entities.Sprint{}, "idx_sprint_project"},
}

// AutoMigrate creates or alters the transcript and project tables, then checks the lookup indexes exist.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	models := Models()
	tx := db.WithContext(ctx)
	if err := tx.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	migrator := tx.Migrator()
	for _, idx := range lookupIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}
		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
		log.Info().Str("index", idx.name).Msg("created missing index")
	}

	log.Info().Int("tables", len(models)).Msg("database schema up to date")
	return nil
}
