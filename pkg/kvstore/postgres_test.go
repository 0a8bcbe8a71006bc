//go:build integration

package kvstore

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/pocketbudget/internal/test_utils"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupPostgresStore(t *testing.T) (context.Context, *PostgresStore) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return ctx, NewPostgresStore(db)
}

func TestPostgresStore_GetSet(t *testing.T) {
	t.Run("should report missing key", func(t *testing.T) {
		ctx, store := setupPostgresStore(t)

		_, err := store.Get(ctx, KeyExpenses)

		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("should overwrite value", func(t *testing.T) {
		ctx, store := setupPostgresStore(t)

		require.NoError(t, store.Set(ctx, KeyBudget, []byte(`"1000"`)))
		require.NoError(t, store.Set(ctx, KeyBudget, []byte(`"1200"`)))

		value, err := store.Get(ctx, KeyBudget)
		require.NoError(t, err)
		assert.Equal(t, `"1200"`, string(value))
	})
}
