package unit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spyglass-sec/spyglass/internal/work"
)

type stubUnit struct {
	name     string
	priority int
}

func (u stubUnit) Name() string                 { return u.name }
func (u stubUnit) Priority() int                { return u.priority }
func (u stubUnit) Applicable(*work.Target) bool { return true }

func (u stubUnit) Evaluate(context.Context, work.Engine, *work.Case) error { return nil }

func buildRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	r := NewRegistry()
	for i, name := range names {
		require.NoError(t, r.Register(stubUnit{name: name, priority: (i + 1) * 10}))
	}
	return r
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := buildRegistry(t, "alpha", "beta")

	assert.Equal(t, 2, r.Len())
	u, ok := r.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", u.Name())
	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_DuplicateNameRejected(t *testing.T) {
	r := buildRegistry(t, "alpha")

	err := r.Register(stubUnit{name: "alpha"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Panics(t, func() { r.MustRegister(stubUnit{name: "alpha"}) })
}

func TestRegistry_UnitsPreservesRegistrationOrder(t *testing.T) {
	r := buildRegistry(t, "zeta", "alpha", "mid")

	var got []string
	for _, u := range r.Units() {
		got = append(got, u.Name())
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, got)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names(), "Names is sorted")
}

func TestRegistry_UnitsReturnsCopy(t *testing.T) {
	r := buildRegistry(t, "alpha", "beta")

	units := r.Units()
	units[0] = stubUnit{name: "mutated"}

	assert.Equal(t, "alpha", r.Units()[0].Name())
}

func TestRegistry_FilterInclude(t *testing.T) {
	r := buildRegistry(t, "a", "b", "c")

	filtered, err := r.Filter([]string{"c", "a"}, nil)
	require.NoError(t, err)

	var got []string
	for _, u := range filtered.Units() {
		got = append(got, u.Name())
	}
	assert.Equal(t, []string{"a", "c"}, got, "include keeps original order, not include order")
}

func TestRegistry_FilterExcludeAfterInclude(t *testing.T) {
	r := buildRegistry(t, "a", "b", "c")

	filtered, err := r.Filter([]string{"a", "b"}, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Len())
	_, ok := filtered.Get("a")
	assert.True(t, ok)
}

func TestRegistry_FilterUnknownName(t *testing.T) {
	r := buildRegistry(t, "a")

	_, err := r.Filter([]string{"typo"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown unit")

	_, err = r.Filter(nil, []string{"typo"})
	assert.Error(t, err)
}

func TestRegistry_ApplyOverrides(t *testing.T) {
	r := buildRegistry(t, "a", "b")

	out, err := r.ApplyOverrides(map[string]int{"b": 1})
	require.NoError(t, err)

	a, _ := out.Get("a")
	b, _ := out.Get("b")
	assert.Equal(t, 10, a.Priority(), "unchanged units keep their priority")
	assert.Equal(t, 1, b.Priority())
	assert.Equal(t, "b", b.Name(), "the override delegates everything but priority")
}

func TestRegistry_ApplyOverridesUnknownName(t *testing.T) {
	r := buildRegistry(t, "a")

	_, err := r.ApplyOverrides(map[string]int{"typo": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown unit")
}
