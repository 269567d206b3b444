// Package store persists container selections for the selector.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adrianmross/ga-context/pkg/config"
	"github.com/adrianmross/ga-context/pkg/selector"
)

// Store is the single home of saved selections. Every command and the daemon
// read and write through it; the config file only keeps the current-container
// pointer when selections live elsewhere.
type Store interface {
	selector.Store
	// Delete removes a container's selection, or returns config.ErrSelectionNotFound.
	Delete(containerID string) error
	// List returns every saved selection keyed by container id.
	List() (map[string]selector.Selection, error)
}

// FileStore keeps selections in the ga-context YAML config.
type FileStore struct {
	path string
}

// NewFileStore returns a store over the config file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(containerID string) (selector.Selection, bool, error) {
	cfg, err := config.Load(f.path)
	if err != nil {
		return selector.Selection{}, false, err
	}
	sel, err := cfg.GetSelection(containerID)
	if errors.Is(err, config.ErrSelectionNotFound) {
		return selector.Selection{}, false, nil
	}
	return sel, err == nil, err
}

func (f *FileStore) Save(containerID string, sel selector.Selection) error {
	return config.Update(f.path, func(c *config.Config) error {
		return c.PutSelection(containerID, sel)
	})
}

func (f *FileStore) Delete(containerID string) error {
	return config.Update(f.path, func(c *config.Config) error {
		return c.DeleteSelection(containerID)
	})
}

func (f *FileStore) List() (map[string]selector.Selection, error) {
	cfg, err := config.Load(f.path)
	if err != nil {
		return nil, err
	}
	return cfg.Selections, nil
}

// MemoryStore keeps selections in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]selector.Selection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]selector.Selection)}
}

func (m *MemoryStore) Load(containerID string) (selector.Selection, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sel, ok := m.data[containerID]
	return sel, ok, nil
}

func (m *MemoryStore) Save(containerID string, sel selector.Selection) error {
	if containerID == "" {
		return config.ErrInvalidContainer
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[containerID] = sel
	return nil
}

func (m *MemoryStore) Delete(containerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[containerID]; !ok {
		return config.ErrSelectionNotFound
	}
	delete(m.data, containerID)
	return nil
}

func (m *MemoryStore) List() (map[string]selector.Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]selector.Selection, len(m.data))
	for id, sel := range m.data {
		out[id] = sel
	}
	return out, nil
}

// RedisKeyPrefix namespaces selection keys in Redis.
const RedisKeyPrefix = "ga-context:selection:"

// RedisStore keeps selections in Redis as JSON values without expiry.
type RedisStore struct {
	client  redis.UniversalClient
	timeout time.Duration
}

// NewRedisStore parses url, connects and pings the server.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, timeout: 5 * time.Second}
}

func (r *RedisStore) Load(containerID string) (selector.Selection, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	raw, err := r.client.Get(ctx, RedisKey(containerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return selector.Selection{}, false, nil
	}
	if err != nil {
		return selector.Selection{}, false, fmt.Errorf("redis get: %w", err)
	}
	sel, err := decodeSelection(raw)
	if err != nil {
		return selector.Selection{}, false, err
	}
	return sel, true, nil
}

func (r *RedisStore) Save(containerID string, sel selector.Selection) error {
	if containerID == "" {
		return config.ErrInvalidContainer
	}
	data, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.client.Set(ctx, RedisKey(containerID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(containerID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	n, err := r.client.Del(ctx, RedisKey(containerID)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if n == 0 {
		return config.ErrSelectionNotFound
	}
	return nil
}

// List scans the selection keyspace. Keys removed between SCAN and GET are skipped.
func (r *RedisStore) List() (map[string]selector.Selection, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	out := map[string]selector.Selection{}
	iter := r.client.Scan(ctx, 0, RedisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}
		sel, err := decodeSelection(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[strings.TrimPrefix(key, RedisKeyPrefix)] = sel
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return out, nil
}

// Close releases the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// RedisKey returns the key holding a container's selection.
func RedisKey(containerID string) string {
	return RedisKeyPrefix + containerID
}

func decodeSelection(raw []byte) (selector.Selection, error) {
	var sel selector.Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return selector.Selection{}, fmt.Errorf("decode selection: %w", err)
	}
	return sel, nil
}

// Open picks the store for cfg: Redis when a URL is configured, else the config file.
func Open(ctx context.Context, cfg config.Config, cfgPath string) (Store, func() error, error) {
	if cfg.Options.RedisURL == "" {
		return NewFileStore(cfgPath), func() error { return nil }, nil
	}
	rs, err := NewRedisStore(ctx, cfg.Options.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return rs, rs.Close, nil
}

// Put saves sel in st and makes id the current container when the config at
// cfgPath names none.
func Put(st Store, cfgPath, id string, sel selector.Selection) error {
	if err := st.Save(id, sel); err != nil {
		return err
	}
	return config.Update(cfgPath, func(c *config.Config) error {
		if c.CurrentContainer == "" {
			c.CurrentContainer = id
		}
		return nil
	})
}

// Remove deletes id from st and clears the current container if it was id.
func Remove(st Store, cfgPath, id string) error {
	if err := st.Delete(id); err != nil {
		return err
	}
	return config.Update(cfgPath, func(c *config.Config) error {
		if c.CurrentContainer == id {
			c.CurrentContainer = ""
		}
		return nil
	})
}

// Current resolves the container to act on and loads its selection from st.
func Current(st Store, cfg config.Config, explicit string) (string, selector.Selection, error) {
	id := cfg.Container(explicit)
	sel, ok, err := st.Load(id)
	if err != nil {
		return id, selector.Selection{}, err
	}
	if !ok {
		return id, selector.Selection{}, config.ErrSelectionNotFound
	}
	return id, sel, nil
}
