package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"telegram-gateway-bot/internal/domain"
)

// RedisRegistry хранит профили в ключах {prefix}:user:{id},
// а порядок регистрации в отсортированном множестве {prefix}:users.
type RedisRegistry struct {
	client redis.UniversalClient
	prefix string
	log    *slog.Logger
	now    func() time.Time
}

// OpenRedis подключается к Redis и проверяет соединение.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return c, nil
}

// NewRedisRegistry создает реестр поверх готового клиента.
func NewRedisRegistry(client redis.UniversalClient, prefix string, log *slog.Logger) *RedisRegistry {
	if prefix == "" {
		prefix = "gateway"
	}
	return &RedisRegistry{client: client, prefix: prefix, log: log, now: time.Now}
}

func (r *RedisRegistry) userKey(id int64) string {
	return fmt.Sprintf("%s:user:%d", r.prefix, id)
}

func (r *RedisRegistry) indexKey() string {
	return r.prefix + ":users"
}

func (r *RedisRegistry) UpsertSeen(ctx context.Context, user domain.User) error {
	if user.JoinedAt.IsZero() {
		user.JoinedAt = r.now()
	}
	user.JoinedAt = user.JoinedAt.UTC()

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user %d: %w", user.ID, err)
	}

	var created *redis.BoolCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, r.userKey(user.ID), data, 0)
		pipe.ZAddNX(ctx, r.indexKey(), redis.Z{
			Score:  float64(user.JoinedAt.UnixMilli()),
			Member: strconv.FormatInt(user.ID, 10),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store user %d: %w", user.ID, err)
	}
	if created.Val() {
		r.log.DebugContext(ctx, "new user registered", slog.Int64("user_id", user.ID))
	}
	return nil
}

func (r *RedisRegistry) Count(ctx context.Context) (int, error) {
	n, err := r.client.ZCard(ctx, r.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(n), nil
}

func (r *RedisRegistry) AllIDs(ctx context.Context) ([]int64, error) {
	members, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			r.log.WarnContext(ctx, "skipping malformed user id in index", slog.String("member", m))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *RedisRegistry) List(ctx context.Context) ([]domain.User, error) {
	ids, err := r.AllIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.userKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load user profiles: %w", err)
	}

	users := make([]domain.User, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			r.log.WarnContext(ctx, "user profile missing", slog.Int64("user_id", ids[i]))
			continue
		}
		var u domain.User
		if err := json.Unmarshal([]byte(s), &u); err != nil {
			r.log.WarnContext(ctx, "failed to decode user profile", slog.Int64("user_id", ids[i]), slog.String("error", err.Error()))
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
