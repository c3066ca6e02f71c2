package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"traffic-analyzer/internal/domain"
)

// SeedRepository 快取每個根網域的種子觀測值 (指標本身不快取)
type SeedRepository interface {
	Get(ctx context.Context, rootDomain string) (domain.SeedObservations, bool)
	Put(ctx context.Context, rootDomain string, seed domain.SeedObservations)
	Delete(ctx context.Context, rootDomain string)
	Count() int
}

type memorySeedRepo struct {
	store *cache.Cache // nil = 停用快取
}

// NewMemorySeedRepo ttl <= 0 時停用快取，Get 永遠 miss
func NewMemorySeedRepo(ttl time.Duration) SeedRepository {
	if ttl <= 0 {
		logrus.Info("[Seed] 種子快取已停用")
		return &memorySeedRepo{}
	}
	return &memorySeedRepo{store: cache.New(ttl, 2*ttl)}
}

func (r *memorySeedRepo) Get(_ context.Context, rootDomain string) (domain.SeedObservations, bool) {
	if r.store == nil {
		return domain.SeedObservations{}, false
	}
	v, ok := r.store.Get(rootDomain)
	if !ok {
		return domain.SeedObservations{}, false
	}
	seed, ok := v.(domain.SeedObservations)
	return seed, ok
}

func (r *memorySeedRepo) Put(_ context.Context, rootDomain string, seed domain.SeedObservations) {
	if r.store == nil {
		return
	}
	r.store.Set(rootDomain, seed, cache.DefaultExpiration)
}

func (r *memorySeedRepo) Delete(_ context.Context, rootDomain string) {
	if r.store == nil {
		return
	}
	r.store.Delete(rootDomain)
}

func (r *memorySeedRepo) Count() int {
	if r.store == nil {
		return 0
	}
	return r.store.ItemCount()
}
