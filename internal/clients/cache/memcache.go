package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

// versionPrefix marks the per-namespace generation counters.
const versionPrefix = "nsver" + separator

type config interface {
	Hosts() []string
	Timeout() time.Duration
}

type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Add(item *memcache.Item) error
	Delete(key string) error
	Increment(key string, delta uint64) (uint64, error)
}

// Memcache keeps entries in memcached. Memcached cannot delete by prefix, so every
// namespace has a generation counter that is embedded in data keys; bumping the
// counter makes the whole namespace unreachable and the old entries age out.
type Memcache struct {
	client memcacheClient
	now    func() time.Time
}

func NewMemcache(config config) (*Memcache, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	if config.Timeout() > 0 {
		mc.Timeout = config.Timeout()
	}
	return &Memcache{client: mc, now: time.Now}, mc.Ping()
}

func (mc *Memcache) Get(_ context.Context, key string) ([]byte, bool, error) {
	dataKey, err := mc.dataKey(key)
	if err != nil {
		return nil, false, err
	}
	item, err := mc.client.Get(dataKey)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &customerr.CacheUnavailableError{Op: "get", Err: err}
	}
	return item.Value, true, nil
}

func (mc *Memcache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	dataKey, err := mc.dataKey(key)
	if err != nil {
		return err
	}
	err = mc.client.Set(&memcache.Item{
		Key:        dataKey,
		Value:      value,
		Expiration: expiration(ttl),
	})
	if err != nil {
		return &customerr.CacheUnavailableError{Op: "set", Err: err}
	}
	return nil
}

// Generation returns the current generation of namespace.
func (mc *Memcache) Generation(_ context.Context, namespace string) (string, error) {
	return mc.version(namespace)
}

// SetIfGeneration stores value under the given generation of the key's namespace.
// If the namespace has moved on, the entry lands under an unreachable key and
// false is returned.
func (mc *Memcache) SetIfGeneration(_ context.Context, key, generation string, value []byte, ttl time.Duration) (bool, error) {
	err := mc.client.Set(&memcache.Item{
		Key:        versionedKey(generation, key),
		Value:      value,
		Expiration: expiration(ttl),
	})
	if err != nil {
		return false, &customerr.CacheUnavailableError{Op: "set", Err: err}
	}
	current, err := mc.version(namespaceOf(key))
	if err != nil {
		return false, err
	}
	return current == generation, nil
}

func (mc *Memcache) Invalidate(_ context.Context, key string) error {
	dataKey, err := mc.dataKey(key)
	if err != nil {
		return err
	}
	err = mc.client.Delete(dataKey)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return &customerr.CacheUnavailableError{Op: "invalidate", Err: err}
	}
	return nil
}

func (mc *Memcache) InvalidateByPrefix(_ context.Context, namespace string) error {
	logger.Info("invalidate cache namespace", zap.String("namespace", namespace))

	_, err := mc.client.Increment(versionPrefix+namespace, 1)
	if errors.Is(err, memcache.ErrCacheMiss) {
		// nothing was ever cached under this generation
		return nil
	}
	if err != nil {
		return &customerr.CacheUnavailableError{Op: "invalidate namespace", Err: err}
	}
	return nil
}

func (mc *Memcache) dataKey(key string) (string, error) {
	version, err := mc.version(namespaceOf(key))
	if err != nil {
		return "", err
	}
	return versionedKey(version, key), nil
}

func versionedKey(version, key string) string {
	return "v" + version + separator + key
}

// version returns the current generation of a namespace, creating it if needed.
// New counters start from the clock so a recreated counter cannot revive old entries.
func (mc *Memcache) version(namespace string) (string, error) {
	counterKey := versionPrefix + namespace
	item, err := mc.client.Get(counterKey)
	if err == nil {
		return string(item.Value), nil
	}
	if !errors.Is(err, memcache.ErrCacheMiss) {
		return "", &customerr.CacheUnavailableError{Op: "get namespace version", Err: err}
	}

	initial := strconv.FormatInt(mc.now().UnixNano(), 10)
	err = mc.client.Add(&memcache.Item{Key: counterKey, Value: []byte(initial)})
	if errors.Is(err, memcache.ErrNotStored) {
		item, err = mc.client.Get(counterKey)
		if err != nil {
			return "", &customerr.CacheUnavailableError{Op: "get namespace version", Err: err}
		}
		return string(item.Value), nil
	}
	if err != nil {
		return "", &customerr.CacheUnavailableError{Op: "create namespace version", Err: err}
	}
	return initial, nil
}

// expiration converts ttl to memcached seconds; memcached reads values above 30 days
// as unix timestamps, so dashboard-scale ttls only.
func expiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl < time.Second {
		return 1
	}
	return int32(ttl / time.Second)
}
