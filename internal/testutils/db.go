package testutils

import (
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ledgerkit/remindd/internal/database"
)

var (
	testDB     *sqlx.DB
	dbInitOnce sync.Once
	dbInitErr  error
)

const testSchema = `
CREATE TABLE IF NOT EXISTS reminders (
    id UUID PRIMARY KEY,
    description TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL,
    start_date DATE NOT NULL,
    end_date DATE,
    increment INTEGER NOT NULL DEFAULT 1 CHECK (increment >= 1),
    enabled BOOLEAN NOT NULL DEFAULT TRUE,
    last_date DATE,
    auto_enter BOOLEAN NOT NULL DEFAULT FALSE,
    advance_notice INTEGER NOT NULL DEFAULT 0 CHECK (advance_notice >= 0),
    webhook_url TEXT NOT NULL DEFAULT '',
    metadata JSONB,
    tags TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS firings (
    id SERIAL PRIMARY KEY,
    reminder_id UUID NOT NULL REFERENCES reminders(id) ON DELETE CASCADE,
    fired_on DATE NOT NULL,
    status TEXT NOT NULL DEFAULT 'delivered',
    detail TEXT NOT NULL DEFAULT '',
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// TestDB returns a shared test database connection, creating the schema on
// first use. Tests are skipped when no test database is reachable.
func TestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dbInitOnce.Do(func() {
		cfg := database.Config{
			Host:     getEnv("TEST_DB_HOST", "localhost"),
			Port:     5433,
			User:     getEnv("TEST_DB_USER", "postgres"),
			Password: getEnv("TEST_DB_PASSWORD", "postgres"),
			DBName:   getEnv("TEST_DB_NAME", "remindd_test"),
			SSLMode:  getEnv("TEST_DB_SSL_MODE", "disable"),
		}

		testDB, dbInitErr = database.Connect(cfg)
		if dbInitErr != nil {
			return
		}
		_, dbInitErr = testDB.Exec(testSchema)
	})

	if dbInitErr != nil {
		t.Skipf("test database unavailable: %v", dbInitErr)
	}

	t.Cleanup(func() {
		_, err := testDB.Exec("TRUNCATE TABLE reminders, firings CASCADE")
		if err != nil {
			t.Errorf("Failed to clean up test data: %v", err)
		}
	})

	return testDB
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
