package initializer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/banksim/infra"
	"github.com/amirasaad/banksim/infra/breaker"
	infra_eventbus "github.com/amirasaad/banksim/infra/eventbus"
	"github.com/amirasaad/banksim/infra/redisstore"
	infra_account "github.com/amirasaad/banksim/infra/repository/account"
	infra_transaction "github.com/amirasaad/banksim/infra/repository/transaction"
	"github.com/amirasaad/banksim/pkg/config"
	"github.com/amirasaad/banksim/pkg/domain/events"
	"github.com/amirasaad/banksim/pkg/eventbus"
	txhandler "github.com/amirasaad/banksim/pkg/handler/transaction"
	"github.com/amirasaad/banksim/pkg/metrics"
	repo "github.com/amirasaad/banksim/pkg/repository/account"
	"github.com/redis/go-redis/v9"
)

// InitializeDependencies initializes all the application dependencies. The
// caller owns the result and must Close it.
func InitializeDependencies(cfg *config.App) (*config.Deps, error) {
	return initialize(context.Background(), cfg, os.Stdout)
}

func initialize(ctx context.Context, cfg *config.App, logOut io.Writer) (_ *config.Deps, err error) {
	deps := &config.Deps{Config: cfg}
	// On error the caller gets no container, so release what was opened here.
	defer func() {
		if err != nil {
			if cerr := deps.Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}
	}()

	logger := setupLogger(cfg.Log, logOut)
	deps.Logger = logger

	var client *redis.Client
	redisClient := func() (*redis.Client, error) {
		if client != nil {
			return client, nil
		}
		c, err := redisstore.NewClient(ctx, *cfg.Redis)
		if err != nil {
			return nil, err
		}
		deps.OnClose(c.Close)
		client = c
		return c, nil
	}

	// Initialize persistence gateway
	var store repo.Repository
	switch cfg.Store.Backend {
	case "redis":
		c, err := redisClient()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis store: %w", err)
		}
		store = redisstore.New(c, cfg.Redis.KeyPrefix, logger)
		deps.TransactionRepository = redisstore.NewJournal(c, cfg.Redis.KeyPrefix)
	default:
		db, err := infra.NewDBConnection(*cfg.DB, cfg.Env)
		if err != nil {
			logger.Error("Failed to initialize database", "error", err)
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		deps.OnClose(sqlDB.Close)
		if cfg.DB.AutoMigrate {
			if err := infra_account.Migrate(db); err != nil {
				return nil, fmt.Errorf("failed to migrate accounts table: %w", err)
			}
			if err := infra_transaction.Migrate(db); err != nil {
				return nil, fmt.Errorf("failed to migrate transactions table: %w", err)
			}
		}
		store = infra_account.New(db)
		deps.TransactionRepository = infra_transaction.New(db)
	}
	if cfg.Breaker != nil && cfg.Breaker.Enabled {
		store = breaker.New(store, *cfg.Breaker, logger)
	}
	deps.AccountRepository = store

	deps.Metrics, err = metrics.NewRecorder(nil)
	if err != nil {
		return nil, err
	}

	// Initialize event bus
	deps.EventBus = initEventBus(cfg, redisClient, logger)
	if closer, ok := deps.EventBus.(io.Closer); ok {
		deps.OnClose(closer.Close)
	}
	registerEventLogging(deps.EventBus, logger)
	deps.EventBus.Register(events.EventTypeTransactionCompleted.String(),
		txhandler.Journal(deps.TransactionRepository, logger))

	logger.Info("Dependencies initialized",
		"store", cfg.Store.Backend,
		"breaker", cfg.Breaker != nil && cfg.Breaker.Enabled,
		"event_bus", fmt.Sprintf("%T", deps.EventBus),
	)
	return deps, nil
}

// initEventBus returns the configured bus. A Redis bus that cannot connect
// falls back to the in-memory bus.
func initEventBus(cfg *config.App, client func() (*redis.Client, error), logger *slog.Logger) eventbus.Bus {
	if cfg.EventBus != nil && cfg.EventBus.Driver == "redis" {
		c, err := client()
		if err == nil {
			return infra_eventbus.NewWithRedis(c, logger)
		}
		logger.Warn("Redis event bus unavailable, using memory bus", "error", err)
	}
	return infra_eventbus.NewWithMemory(logger)
}

// registerEventLogging logs every transaction outcome published on bus.
func registerEventLogging(bus eventbus.Bus, logger *slog.Logger) {
	logger = logger.With("component", "event-log")
	bus.Register(events.EventTypeTransactionCompleted.String(), func(_ context.Context, e events.Event) error {
		evt, ok := e.(*events.TransactionCompleted)
		if !ok {
			return fmt.Errorf("unexpected event %T", e)
		}
		logger.Info("transaction completed",
			"account", evt.AccountID,
			"actor", evt.Actor,
			"operation", evt.FlowType,
			"amount", evt.Amount.String(),
			"balance", evt.Balance.String(),
		)
		return nil
	})
	bus.Register(events.EventTypeTransactionFailed.String(), func(_ context.Context, e events.Event) error {
		evt, ok := e.(*events.TransactionFailed)
		if !ok {
			return fmt.Errorf("unexpected event %T", e)
		}
		logger.Warn("transaction failed",
			"account", evt.AccountID,
			"actor", evt.Actor,
			"operation", evt.FlowType,
			"amount", evt.Amount.String(),
			"outcome", evt.Reason,
		)
		return nil
	})
}
