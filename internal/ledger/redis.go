package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"SignalSentinel/internal/model"
)

const DefaultRedisKey = "signalsentinel:alerts"

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisLedger stores the alert ledger as a JSON array under a single key.
type RedisLedger struct {
	cli *redis.Client
	key string
}

func NewRedisLedger(cfg RedisConfig) *RedisLedger {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return NewRedisLedgerWithClient(rdb, cfg.Key)
}

func NewRedisLedgerWithClient(cli *redis.Client, key string) *RedisLedger {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisLedger{cli: cli, key: key}
}

func (l *RedisLedger) Name() string { return "redis" }

func (l *RedisLedger) Load(ctx context.Context) ([]model.AlertRecord, error) {
	b, err := l.cli.Get(ctx, l.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.AlertRecord{}, nil
		}
		return nil, err
	}
	var records []model.AlertRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.key, err)
	}
	return records, nil
}

func (l *RedisLedger) Save(ctx context.Context, records []model.AlertRecord) error {
	if records == nil {
		records = []model.AlertRecord{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return l.cli.Set(ctx, l.key, b, 0).Err()
}

func (l *RedisLedger) Close() error {
	return l.cli.Close()
}
