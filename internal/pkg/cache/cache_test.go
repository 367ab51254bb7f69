package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemory_Expiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }

	m.Set("a", 1)
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	_, ok = m.Get("a")
	assert.False(t, ok)
}

func TestNamespace_InvalidationIsScoped(t *testing.T) {
	m := NewMemory(time.Hour)
	policies := NewNamespace(m, "leave_policy")
	configs := NewNamespace(m, "salary_config")

	policies.Set("annual", "p1")
	policies.Set("sick", "p2")
	configs.Set("u1", "c1")

	policies.InvalidateAll()

	_, ok := policies.Get("annual")
	assert.False(t, ok)
	_, ok = policies.Get("sick")
	assert.False(t, ok)
	v, ok := configs.Get("u1")
	assert.True(t, ok)
	assert.Equal(t, "c1", v)

	configs.Invalidate("u1")
	_, ok = configs.Get("u1")
	assert.False(t, ok)
}
