package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// garbageTTL — срок хранения записи для токена без читаемого exp.
const garbageTTL = time.Minute

// Redis — общий для всех экземпляров набор отозванных токенов.
// Ключ: prefix + sha256(token); TTL = exp+grace-now, поэтому Redis сам
// удаляет записи, и Sweep ничего не делает. grace равен допуску часов
// Guard'а: пока токен может пройти проверку срока, запись должна жить.
type Redis struct {
	rdb    *redis.Client
	prefix string
	grace  time.Duration
	now    func() time.Time
}

// NewRedis создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "auth:revoked:".
func NewRedis(ctx context.Context, redisURL, prefix string, grace time.Duration) (*Redis, error) {
	const op = "revocation.NewRedis"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewRedisWithClient(rdb, prefix, grace), nil
}

// NewRedisWithClient оборачивает уже созданный клиент.
func NewRedisWithClient(rdb *redis.Client, prefix string, grace time.Duration) *Redis {
	if prefix == "" {
		prefix = "auth:revoked:"
	}
	if grace < 0 {
		grace = 0
	}

	return &Redis{rdb: rdb, prefix: prefix, grace: grace, now: time.Now}
}

func (r *Redis) key(token string) string { return r.prefix + hashToken(token) }

func (r *Redis) Revoke(ctx context.Context, token string) error {
	const op = "revocation.Redis.Revoke"

	ttl := r.ttl(token)

	if err := r.rdb.Set(ctx, r.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ttl — срок жизни записи: до exp+grace, но не меньше garbageTTL
// для нераскодируемых и уже истёкших токенов.
func (r *Redis) ttl(token string) time.Duration {
	exp, ok := ExpiresAt(token)
	if !ok {
		return garbageTTL
	}

	if left := exp.Add(r.grace).Sub(r.now()); left > 0 {
		return left
	}

	return garbageTTL
}

func (r *Redis) IsRevoked(ctx context.Context, token string) (bool, error) {
	const op = "revocation.Redis.IsRevoked"

	n, err := r.rdb.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

// Sweep — no-op: записи истекают по TTL.
func (r *Redis) Sweep(context.Context, time.Time) (int, error) { return 0, nil }

func (r *Redis) Close() error { return r.rdb.Close() }

var _ Store = (*Redis)(nil)
