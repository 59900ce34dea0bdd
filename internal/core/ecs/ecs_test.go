package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolNeverIssuesZero(t *testing.T) {
	p := NewEntityPool()
	id := p.Create()
	assert.False(t, id.IsZero())
	assert.True(t, p.Alive(id))
	assert.False(t, p.Alive(0))
}

func TestPoolStaleAfterDestroy(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	p.Destroy(a)
	assert.False(t, p.Alive(a))

	b := p.Create()
	require.Equal(t, a.Index(), b.Index(), "index is recycled")
	assert.NotEqual(t, a, b)
	assert.True(t, p.Alive(b))
	assert.False(t, p.Alive(a))

	p.Destroy(a) // stale destroy is a no-op
	assert.True(t, p.Alive(b))
	assert.Equal(t, 1, p.Live())
}

func TestRegistryRemoveAll(t *testing.T) {
	names := NewPtrComponentStore[string]()
	hp := NewPtrComponentStore[int]()
	reg := NewRegistry()
	reg.Register(names)
	reg.Register(hp)

	n, h := "spider", 100
	names.Set(7, &n)
	hp.Set(7, &h)
	reg.RemoveAll(7)

	assert.False(t, names.Has(7))
	assert.False(t, hp.Has(7))
}

func TestEach2Ordered(t *testing.T) {
	a := NewPtrComponentStore[int]()
	b := NewPtrComponentStore[int]()
	for _, id := range []EntityID{5, 2, 9} {
		v := int(id)
		a.Set(id, &v)
	}
	for _, id := range []EntityID{9, 2} {
		v := int(id) * 10
		b.Set(id, &v)
	}

	var seen []EntityID
	Each2(a, b, func(id EntityID, x, y *int) {
		seen = append(seen, id)
		assert.Equal(t, *x*10, *y)
	})
	assert.Equal(t, []EntityID{2, 9}, seen)
}
