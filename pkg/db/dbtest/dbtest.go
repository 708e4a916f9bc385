// Package dbtest opens throwaway sqlite databases carrying the full schema.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/foresttrail/trailops/pkg/config"
	"github.com/foresttrail/trailops/pkg/db"
	"github.com/foresttrail/trailops/pkg/db/models"
)

// sqliteParams serialize writers the way row locks do on postgres: every
// transaction takes the write lock at BEGIN and waiters block instead of failing.
const sqliteParams = "?_busy_timeout=10000&_txlock=immediate&_journal_mode=WAL&_foreign_keys=on"

// New returns a client backed by a file database under t.TempDir.
func New(t testing.TB) *db.Client {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "trailops.db") + sqliteParams
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    dsn,
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	if err := client.DB().AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return client
}
