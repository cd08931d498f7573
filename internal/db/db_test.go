package db

import "testing"

func TestGormConfigSkipsMigrationConstraints(t *testing.T) {
	cfg := gormConfig(nil)
	if !cfg.DisableForeignKeyConstraintWhenMigrating {
		t.Error("migration must not emit foreign key constraints; hard deletes of parents with dependents run in service transactions")
	}
	if cfg.NowFunc == nil {
		t.Fatal("NowFunc not set")
	}
	if now := cfg.NowFunc(); now.Location().String() != "UTC" {
		t.Errorf("timestamps must be UTC, got %s", now.Location())
	}
}
