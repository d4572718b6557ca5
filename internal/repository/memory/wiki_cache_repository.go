package memory

import (
	"fmt"
	"time"

	"wiki-craft-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// WikiCacheRepository keeps recently synthesized entries in memory so a
// repeated query does not redo retrieval and clustering. Any document change
// flushes the whole cache; entries are cheap to rebuild.
type WikiCacheRepository struct {
	cache *cache.Cache
}

func NewWikiCacheRepository(ttl time.Duration) *WikiCacheRepository {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	c := cache.New(ttl, 10*time.Minute)
	return &WikiCacheRepository{
		cache: c,
	}
}

// Key builds the cache key for a generation request.
func Key(query string, maxSources int) string {
	return fmt.Sprintf("%s|%d", query, maxSources)
}

func (r *WikiCacheRepository) Save(key string, entry *entity.WikiEntry) {
	r.cache.Set(key, entry, cache.DefaultExpiration)
}

func (r *WikiCacheRepository) Get(key string) (*entity.WikiEntry, bool) {
	if x, found := r.cache.Get(key); found {
		return x.(*entity.WikiEntry), true
	}
	return nil, false
}

func (r *WikiCacheRepository) Flush() {
	r.cache.Flush()
}
