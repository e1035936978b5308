package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sugarsyndicate/beltline/internal/config"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "00001_ledger.sql")
}

// Needs a disposable database: BELTLINE_TEST_DSN=postgres://... go test ./internal/persist
func TestLedgerRepo_Postgres(t *testing.T) {
	dsn := os.Getenv("BELTLINE_TEST_DSN")
	if dsn == "" {
		t.Skip("BELTLINE_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: time.Minute}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, RunMigrations(ctx, db))

	wallet := "test-" + time.Now().Format("150405.000000")
	repo := NewLedgerRepo(db)

	bal, err := repo.LoadBalance(ctx, wallet, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)

	now := time.Now().UTC()
	require.NoError(t, repo.WriteEntries(ctx, wallet, []LedgerEntry{
		{Kind: "spend", Amount: 30, Balance: 70, At: now},
		{Kind: "refund", Amount: 5, Balance: 75, At: now},
	}, 75))

	bal, err = repo.LoadBalance(ctx, wallet, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(75), bal)

	var n int
	require.NoError(t, db.Pool.QueryRow(ctx, `SELECT count(*) FROM build_ledger WHERE wallet = $1`, wallet).Scan(&n))
	assert.Equal(t, 2, n)

	require.NoError(t, repo.SaveBalance(ctx, wallet, 1))
	bal, err = repo.LoadBalance(ctx, wallet, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bal)
}
