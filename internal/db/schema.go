package db

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/seed.sql
var seedSQL string

// InitSchema creates the tables and indexes if they do not exist.
func InitSchema(ctx context.Context, engine Engine) error {
	if _, err := engine.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Seed inserts the demo cohort. Safe to run on an already-seeded database
// for reviewers and conflicts; applications are inserted unconditionally.
func Seed(ctx context.Context, engine Engine) error {
	if _, err := engine.Exec(ctx, seedSQL); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	return nil
}
