package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	cachekeys "cryptoagent/internal/cache"
	"cryptoagent/internal/model"
	"cryptoagent/pkg/market"
)

// Cache is the subset of go-zero's cache.Cache used by CoinRepo.
type Cache interface {
	GetCtx(ctx context.Context, key string, val any) error
	SetCtx(ctx context.Context, key string, val any) error
	SetWithExpireCtx(ctx context.Context, key string, val any, expire time.Duration) error
	DelCtx(ctx context.Context, keys ...string) error
	IsNotFound(err error) bool
}

// CoinRepo serves the coin query store from the database, caching reads in
// Redis under the current load epoch. Without a cache it is a thin pass-through.
type CoinRepo struct {
	model    model.CoinMarketDataModel
	cache    Cache
	ttl      time.Duration
	newEpoch func() string
}

// NewCoinRepo wires a repository. cache may be nil.
func NewCoinRepo(m model.CoinMarketDataModel, c Cache, ttls cachekeys.TTLSet) *CoinRepo {
	return &CoinRepo{
		model:    m,
		cache:    c,
		ttl:      cachekeys.CoinsTTL(ttls),
		newEpoch: uuid.NewString,
	}
}

func (r *CoinRepo) TopByMarketCap(ctx context.Context, limit int) ([]market.Coin, error) {
	if limit <= 0 {
		return []market.Coin{}, nil
	}
	return r.cached(ctx, func(epoch string) string { return cachekeys.CoinsTopKey(epoch, limit) },
		func() ([]market.Coin, error) { return r.model.TopByMarketCap(ctx, limit) })
}

func (r *CoinRepo) FindByName(ctx context.Context, substring string) ([]market.Coin, error) {
	return r.cached(ctx, func(epoch string) string { return cachekeys.CoinsByNameKey(epoch, substring) },
		func() ([]market.Coin, error) { return r.model.FindByName(ctx, substring) })
}

func (r *CoinRepo) ListAll(ctx context.Context) ([]market.Coin, error) {
	return r.cached(ctx, cachekeys.CoinsAllKey,
		func() ([]market.Coin, error) { return r.model.ListAll(ctx) })
}

// ReplaceAll swaps the table and then rotates the cache epoch. If the new
// epoch cannot be published the old one is removed so readers fall back to
// the database instead of serving the previous table.
func (r *CoinRepo) ReplaceAll(ctx context.Context, coins []market.Coin) error {
	if err := r.model.ReplaceAll(ctx, coins); err != nil {
		return err
	}
	if r.cache == nil {
		return nil
	}
	epoch := r.newEpoch()
	if err := r.cache.SetCtx(ctx, cachekeys.CoinsEpochKey(), epoch); err != nil {
		logx.WithContext(ctx).Errorf("repo: rotate coins epoch: %v", err)
		if err := r.cache.DelCtx(ctx, cachekeys.CoinsEpochKey()); err != nil {
			logx.WithContext(ctx).Errorf("repo: drop coins epoch: %v", err)
		}
		return nil
	}
	logx.WithContext(ctx).Infof("repo: coins epoch rotated to %s", epoch)
	return nil
}

func (r *CoinRepo) cached(ctx context.Context, keyFn func(epoch string) string, load func() ([]market.Coin, error)) ([]market.Coin, error) {
	epoch, ok := r.epoch(ctx)
	if !ok {
		return load()
	}
	key := keyFn(epoch)
	var coins []market.Coin
	if hit, err := r.getCache(ctx, key, &coins); err != nil {
		logx.WithContext(ctx).Errorf("repo: get cache %s: %v", key, err)
	} else if hit {
		return coins, nil
	}
	coins, err := load()
	if err != nil {
		return nil, err
	}
	r.setCache(ctx, key, coins)
	return coins, nil
}

func (r *CoinRepo) epoch(ctx context.Context) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	var epoch string
	hit, err := r.getCache(ctx, cachekeys.CoinsEpochKey(), &epoch)
	if err != nil {
		logx.WithContext(ctx).Errorf("repo: get coins epoch: %v", err)
		return "", false
	}
	return epoch, hit && epoch != ""
}

// helper: get from redis into v
func (r *CoinRepo) getCache(ctx context.Context, key string, v any) (bool, error) {
	if err := r.cache.GetCtx(ctx, key, v); err != nil {
		if r.cache.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// helper: set redis from v
func (r *CoinRepo) setCache(ctx context.Context, key string, v any) {
	if r.ttl <= 0 {
		return
	}
	if err := r.cache.SetWithExpireCtx(ctx, key, v, r.ttl); err != nil {
		logx.WithContext(ctx).Errorf("set cache %s: %v", key, err)
	}
}
