package initializer

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/amirasaad/banksim/infra/breaker"
	infra_eventbus "github.com/amirasaad/banksim/infra/eventbus"
	"github.com/amirasaad/banksim/infra/redisstore"
	"github.com/amirasaad/banksim/pkg/config"
	"github.com/amirasaad/banksim/pkg/domain/events"
	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig(t *testing.T) *config.App {
	t.Helper()
	return &config.App{
		Env:        "test",
		Log:        &config.Log{Format: "text", Level: 8},
		DB:         &config.DB{Url: "sqlite://" + filepath.Join(t.TempDir(), "bank.db"), AutoMigrate: true},
		Store:      &config.Store{Backend: "database"},
		Redis:      &config.Redis{URL: "redis://127.0.0.1:1/0", KeyPrefix: "test:", DialTimeout: 200 * time.Millisecond},
		EventBus:   &config.EventBus{Driver: "memory"},
		Breaker:    &config.Breaker{Enabled: true, MaxFailures: 3, OpenTimeout: time.Second},
		LoadRetry:  &config.LoadRetry{},
		Dispatcher: &config.Dispatcher{},
	}
}

func TestInitializeDatabaseBackend(t *testing.T) {
	deps, err := initialize(context.Background(), testConfig(t), io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, deps.Close()) })

	assert.IsType(t, &breaker.Repository{}, deps.AccountRepository)
	assert.IsType(t, &infra_eventbus.MemoryEventBus{}, deps.EventBus)
	assert.NotNil(t, deps.Metrics)

	ctx := context.Background()
	require.NoError(t, deps.AccountRepository.Create(ctx, dto.AccountCreate{ID: "111", Owner: "Budi", Balance: decimal.NewFromInt(10)}))
	read, err := deps.AccountRepository.Get(ctx, "111")
	require.NoError(t, err)
	assert.True(t, read.Balance.Equal(decimal.NewFromInt(10)))

	flow := events.NewFlowEvent().WithAccountID("111").WithActor("Adi").WithFlowType("deposit").WithAmount(decimal.NewFromInt(5))
	evt := events.NewTransactionCompleted(*flow,
		events.WithTransactionID(uuid.New()),
		events.WithBalances(decimal.NewFromInt(10), decimal.NewFromInt(15)),
	)
	require.NoError(t, deps.EventBus.Emit(ctx, evt))
	journal, err := deps.TransactionRepository.ListByAccount(ctx, "111", 0)
	require.NoError(t, err)
	require.Len(t, journal, 1)
	assert.Equal(t, evt.TransactionID, journal[0].ID)
}

func TestInitializeRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Store.Backend = "redis"
	cfg.Breaker.Enabled = false
	cfg.Redis.URL = "redis://" + mr.Addr() + "/0"
	cfg.EventBus.Driver = "redis"

	deps, err := initialize(context.Background(), cfg, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, deps.Close()) })

	assert.IsType(t, &redisstore.Store{}, deps.AccountRepository)
	assert.IsType(t, &infra_eventbus.RedisEventBus{}, deps.EventBus)

	require.NoError(t, deps.AccountRepository.Create(context.Background(), dto.AccountCreate{ID: "111", Owner: "Budi"}))
	assert.True(t, mr.Exists("test:account:111"))
}

func TestInitializeRedisBackendUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "redis"

	var (
		deps *config.Deps
		err  error
	)
	require.NotPanics(t, func() {
		deps, err = initialize(context.Background(), cfg, io.Discard)
	})
	assert.Error(t, err)
	assert.Nil(t, deps)
}

func TestInitializeMigrationFailureReleasesDatabase(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "taken.db")
	cfg.DB.Url = "sqlite://" + path

	// A view named accounts makes the accounts table migration fail.
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE VIEW accounts AS SELECT 1 AS id").Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	var deps *config.Deps
	require.NotPanics(t, func() {
		deps, err = initialize(context.Background(), cfg, io.Discard)
	})
	assert.ErrorContains(t, err, "failed to migrate accounts table")
	assert.Nil(t, deps)
}

func TestRedisEventBusFallsBackToMemory(t *testing.T) {
	cfg := testConfig(t)
	cfg.EventBus.Driver = "redis"

	deps, err := initialize(context.Background(), cfg, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	assert.IsType(t, &infra_eventbus.MemoryEventBus{}, deps.EventBus)
}

func TestSetupLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(&config.Log{Format: "json", Prefix: "[banksim]"}, &buf)
	logger.Info("withdraw", "actor", "Adi")

	assert.Contains(t, buf.String(), `"actor":"Adi"`)
	assert.Contains(t, buf.String(), "withdraw")
}
