package estuary

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"estuary/models"
)

type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	m.data[key] = raw
	return err
}

func (m *memoryCache) DeletePrefix(_ context.Context, prefix string) error {
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

type countingCatalog struct {
	Catalog
	categoryCalls int
	serviceCalls  int
}

func (c *countingCatalog) Categories(context.Context) ([]models.Category, error) {
	c.categoryCalls++
	return []models.Category{{ID: "c1", Name: "Wellness"}}, nil
}

func (c *countingCatalog) ListServices(_ context.Context, f ServiceFilter) ([]models.ServiceRecord, error) {
	c.serviceCalls++
	return []models.ServiceRecord{{ID: "s1", PractitionerID: f.PractitionerID, Price: "30", DurationMinutes: 45}}, nil
}

func TestCachedCatalogReadThrough(t *testing.T) {
	api := &countingCatalog{}
	cat := NewCachedCatalog(api, newMemoryCache(), time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cat.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Wellness", got[0].Name)
	}
	assert.Equal(t, 1, api.categoryCalls)
}

func TestCachedCatalogInvalidateServices(t *testing.T) {
	api := &countingCatalog{}
	cat := NewCachedCatalog(api, newMemoryCache(), time.Minute, zap.NewNop())
	ctx := context.Background()

	sessions, err := cat.SessionServices(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, sessions[0].Price)
	_, _ = cat.SessionServices(ctx, "p1")
	assert.Equal(t, 1, api.serviceCalls)

	require.NoError(t, cat.InvalidateServices(ctx, "p1"))
	_, _ = cat.SessionServices(ctx, "p1")
	assert.Equal(t, 2, api.serviceCalls)
}
