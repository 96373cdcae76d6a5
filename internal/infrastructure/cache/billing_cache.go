package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/domain/repository"
)

// KV subconjunto de go-redis que usa la cache (lo cumple *goredis.Client).
type KV interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

var _ repository.BillingRepository = (*BillingCache)(nil)

// BillingCache decora un BillingRepository cacheando Latest por serial.
// Los errores de Redis no interrumpen la operación: se registran y se va al repositorio.
type BillingCache struct {
	inner  repository.BillingRepository
	kv     KV
	prefix string
	ttl    time.Duration
	log    zerolog.Logger
}

func NewBillingCache(inner repository.BillingRepository, kv KV, prefix string, ttl time.Duration, log zerolog.Logger) *BillingCache {
	return &BillingCache{inner: inner, kv: kv, prefix: prefix, ttl: ttl, log: log}
}

func (c *BillingCache) key(serialID string) string {
	return c.prefix + "billing:latest:" + serialID
}

func (c *BillingCache) Save(ctx context.Context, saved *entity.SavedBilling) error {
	if err := c.inner.Save(ctx, saved); err != nil {
		return err
	}
	c.invalidate(ctx, saved.Billing.SerialID)
	return nil
}

func (c *BillingCache) Latest(ctx context.Context, serialID string) (*entity.SavedBilling, error) {
	key := c.key(serialID)
	raw, err := c.kv.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var saved entity.SavedBilling
		if jerr := json.Unmarshal(raw, &saved); jerr == nil {
			return &saved, nil
		}
		c.log.Warn().Str("key", key).Msg("entrada de cache corrupta")
	case !errors.Is(err, goredis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("redis get falló")
	}

	saved, err := c.inner.Latest(ctx, serialID)
	if err != nil || saved == nil {
		return saved, err
	}
	if data, jerr := json.Marshal(saved); jerr == nil {
		if serr := c.kv.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.log.Warn().Err(serr).Str("key", key).Msg("redis set falló")
		}
	}
	return saved, nil
}

func (c *BillingCache) History(ctx context.Context, serialID string) ([]*entity.SavedBilling, error) {
	return c.inner.History(ctx, serialID)
}

func (c *BillingCache) ListSerials(ctx context.Context) ([]string, error) {
	return c.inner.ListSerials(ctx)
}

func (c *BillingCache) Summary(ctx context.Context, serialID string) (*entity.BillingSummary, error) {
	return c.inner.Summary(ctx, serialID)
}

func (c *BillingCache) Has(ctx context.Context, serialID string) (bool, error) {
	return c.inner.Has(ctx, serialID)
}

func (c *BillingCache) Clear(ctx context.Context, serialID string) error {
	if err := c.inner.Clear(ctx, serialID); err != nil {
		return err
	}
	c.invalidate(ctx, serialID)
	return nil
}

func (c *BillingCache) ClearAll(ctx context.Context) error {
	serials, err := c.inner.ListSerials(ctx)
	if err != nil {
		return err
	}
	if err := c.inner.ClearAll(ctx); err != nil {
		return err
	}
	c.invalidate(ctx, serials...)
	return nil
}

func (c *BillingCache) invalidate(ctx context.Context, serials ...string) {
	if len(serials) == 0 {
		return
	}
	keys := make([]string, len(serials))
	for i, s := range serials {
		keys[i] = c.key(s)
	}
	if err := c.kv.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("redis del falló")
	}
}
