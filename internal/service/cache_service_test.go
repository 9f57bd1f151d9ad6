package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
)

type memCacheRepo struct {
	mu          sync.Mutex
	data        map[string][]byte
	invalidated []string
	getErr      error
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{data: make(map[string][]byte)}
}

func (m *memCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
		}
	}
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemCacheRepo()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)

	var out map[string]int
	assert.False(t, svc.Get(context.Background(), "pix:list:all", &out))

	svc.Set(context.Background(), "pix:list:all", map[string]int{"paid": 2}, 0)
	assert.True(t, svc.Get(context.Background(), "pix:list:all", &out))
	assert.Equal(t, 2, out["paid"])

	svc.Invalidate(context.Background(), "pix:list:*")
	assert.False(t, svc.Get(context.Background(), "pix:list:all", &out))
}

func TestCacheServiceDisabledIsInert(t *testing.T) {
	repo := newMemCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	svc.Set(context.Background(), "k", 1, 0)
	assert.Empty(t, repo.data)
	assert.False(t, svc.Enabled())

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	assert.False(t, nilSvc.Get(context.Background(), "k", new(int)))
	nilSvc.Invalidate(context.Background(), "*")
}

func TestCacheServiceErrorsDegradeToMiss(t *testing.T) {
	repo := newMemCacheRepo()
	repo.getErr = errors.New("redis down")
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	var out int
	assert.False(t, svc.Get(context.Background(), "k", &out))
}
