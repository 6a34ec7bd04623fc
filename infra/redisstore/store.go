// Package redisstore keeps account records in Redis hashes, one hash per
// account number.
package redisstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/banksim/pkg/config"
	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/amirasaad/banksim/pkg/repository"
	repo "github.com/amirasaad/banksim/pkg/repository/account"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	fieldOwner     = "owner"
	fieldBalance   = "balance"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

// createScript writes the hash only if the key is absent.
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'owner', ARGV[1], 'balance', ARGV[2], 'created_at', ARGV[3], 'updated_at', ARGV[3])
return 1
`)

// writeScript updates the balance only if the key exists.
var writeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[1], 'balance', ARGV[1], 'updated_at', ARGV[2])
return 1
`)

// Store implements the account repository on Redis.
type Store struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Store. Keys are "<prefix>account:<id>".
func New(client redis.UniversalClient, prefix string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: client,
		prefix: prefix,
		logger: logger.With("store", "redis"),
		now:    time.Now,
	}
}

// NewClient builds a client from configuration and checks connectivity.
func NewClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opt.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opt.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opt.WriteTimeout = cfg.WriteTimeout
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: connection failed: %w", err)
	}
	return client, nil
}

func (s *Store) key(id string) string {
	return s.prefix + "account:" + id
}

// Create implements account.Repository.
func (s *Store) Create(ctx context.Context, create dto.AccountCreate) error {
	now := s.now().UTC().Format(time.RFC3339Nano)
	created, err := createScript.Run(ctx, s.client, []string{s.key(create.ID)},
		create.Owner, create.Balance.String(), now).Int()
	if err != nil {
		return fmt.Errorf("create account %s: %w", create.ID, err)
	}
	if created == 0 {
		return repository.ErrAlreadyExists
	}
	return nil
}

// Get implements account.Repository.
func (s *Store) Get(ctx context.Context, id string) (*dto.AccountRead, error) {
	vals, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", id, err)
	}
	if len(vals) == 0 {
		return nil, repository.ErrNotFound
	}

	balance, err := decimal.NewFromString(vals[fieldBalance])
	if err != nil {
		return nil, fmt.Errorf("get account %s: corrupt balance %q: %w", id, vals[fieldBalance], err)
	}
	read := &dto.AccountRead{ID: id, Owner: vals[fieldOwner], Balance: balance}
	read.CreatedAt, _ = time.Parse(time.RFC3339Nano, vals[fieldCreatedAt])
	read.UpdatedAt, _ = time.Parse(time.RFC3339Nano, vals[fieldUpdatedAt])
	return read, nil
}

// WriteBalance implements account.Repository. The script refuses to create a
// missing hash, so nil means the stored record now holds balance.
func (s *Store) WriteBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	now := s.now().UTC().Format(time.RFC3339Nano)
	written, err := writeScript.Run(ctx, s.client, []string{s.key(id)}, balance.String(), now).Int()
	if err != nil {
		s.logger.Error("balance write failed", "account", id, "error", err)
		return fmt.Errorf("write balance %s: %w", id, err)
	}
	if written == 0 {
		return fmt.Errorf("write balance %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

var _ repo.Repository = (*Store)(nil)
