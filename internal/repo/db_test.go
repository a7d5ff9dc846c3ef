package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/holyguacamole/go-avocado-backend/internal/domain"
)

func TestOpenSQLite_CreatesAndMigrates(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if !db.Migrator().HasTable(&domain.AvocadoReceipt{}) {
		t.Fatalf("receipt table missing after migration")
	}

	// Round-trip through the migrated schema.
	if err := CreateReceipts(context.Background(), db, []domain.AvocadoReceipt{
		{EventID: "ev1", Sender: "U1", Receiver: "U2", Timestamp: 1, Message: "m"},
	}); err != nil {
		t.Fatalf("CreateReceipts: %v", err)
	}
}

func TestOpenSQLite_MissingParentDirFails(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "nope", "ledger.db"))
	if err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}
