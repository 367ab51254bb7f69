package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/postgresql"
)

var (
	setupOnce sync.Once
	testDB    *database.DB
	setupErr  error
)

// setupTestDB connects to TEST_DATABASE_URL and applies the migrations once.
// Tests are skipped when the variable is not set.
func setupTestDB(t *testing.T) (*database.DB, *postgresql.Retrier) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	setupOnce.Do(func() {
		ctx := context.Background()
		testDB, setupErr = database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 10})
		if setupErr != nil {
			return
		}
		setupErr = database.Migrate(ctx, testDB, false)
	})
	require.NoError(t, setupErr)

	truncateAllTables(t)
	return testDB, postgresql.NewRetrier(postgresql.DefaultRetryPolicy())
}

func truncateAllTables(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	tables := []string{
		"attendances",
		"leave_policies",
		"leave_balances",
		"leave_requests",
		"salary_configs",
		"salaries",
		"notifications",
		"notification_preferences",
	}
	for _, table := range tables {
		_, err := testDB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}
}
