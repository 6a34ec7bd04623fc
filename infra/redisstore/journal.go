package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amirasaad/banksim/pkg/dto"
	txrepo "github.com/amirasaad/banksim/pkg/repository/transaction"
	"github.com/redis/go-redis/v9"
)

// Journal keeps each account's transactions in a sorted set scored by
// creation time. Members are the JSON encoding of the entry, so re-adding the
// same transaction is a no-op.
type Journal struct {
	client redis.UniversalClient
	prefix string
}

// NewJournal creates a Journal. Keys are "<prefix>transactions:<account id>".
func NewJournal(client redis.UniversalClient, prefix string) *Journal {
	return &Journal{client: client, prefix: prefix}
}

func (j *Journal) key(accountID string) string {
	return j.prefix + "transactions:" + accountID
}

// Create implements transaction.Repository.
func (j *Journal) Create(ctx context.Context, create dto.TransactionCreate) error {
	member, err := json.Marshal(dto.TransactionRead(create))
	if err != nil {
		return fmt.Errorf("encode transaction %s: %w", create.ID, err)
	}
	z := redis.Z{Score: float64(create.CreatedAt.UnixMicro()), Member: member}
	if err := j.client.ZAddNX(ctx, j.key(create.AccountID), z).Err(); err != nil {
		return fmt.Errorf("journal transaction %s: %w", create.ID, err)
	}
	return nil
}

// ListByAccount implements transaction.Repository.
func (j *Journal) ListByAccount(ctx context.Context, accountID string, limit int) ([]*dto.TransactionRead, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	members, err := j.client.ZRevRange(ctx, j.key(accountID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list transactions %s: %w", accountID, err)
	}
	result := make([]*dto.TransactionRead, 0, len(members))
	for _, m := range members {
		var tx dto.TransactionRead
		if err := json.Unmarshal([]byte(m), &tx); err != nil {
			return nil, fmt.Errorf("list transactions %s: corrupt entry: %w", accountID, err)
		}
		result = append(result, &tx)
	}
	return result, nil
}

var _ txrepo.Repository = (*Journal)(nil)
