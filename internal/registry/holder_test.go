package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHolder_PutAllocatesDenseIDs(t *testing.T) {
	h := NewHolder[string]()
	require.Equal(t, 0, h.Put("A", "a", false))
	require.Equal(t, 1, h.Put("B", "b", false))
	require.Equal(t, 0, h.Put("A", "a2", false))

	v, ok := h.Get("A")
	require.True(t, ok)
	require.Equal(t, "a2", v)
	require.Equal(t, []string{"A", "B"}, h.Names())
	require.Equal(t, []string{"a2", "b"}, h.All())
}

func TestHolder_UnknownName(t *testing.T) {
	h := NewHolder[string]()
	_, ok := h.Get("missing")
	require.False(t, ok)

	_, err := h.IDOf("missing")
	require.ErrorIs(t, err, ErrNoSuchElement)

	_, ok = h.GetByID(0)
	require.False(t, ok)
	_, ok = h.GetByID(-1)
	require.False(t, ok)
}

func TestHolder_Tombstone(t *testing.T) {
	h := NewHolder[string]()
	h.Put("A", "a", false)
	h.Put("B", "b", false)

	tomb := h.Tombstone(map[int]bool{1: true})

	_, ok := tomb.Get("A")
	require.False(t, ok)
	_, ok = tomb.GetByID(0)
	require.False(t, ok)

	b, ok := tomb.GetByID(1)
	require.True(t, ok)
	require.Equal(t, "b", b)

	require.Equal(t, 0, tomb.Put("A", "a again", false))
	require.Equal(t, 2, tomb.Put("C", "c", false))

	// The source holder is untouched.
	a, ok := h.Get("A")
	require.True(t, ok)
	require.Equal(t, "a", a)
}

func TestHolder_CaseInsensitive(t *testing.T) {
	h := NewHolder[string]()
	id := h.Put("CaseInSensitive", "x", true)

	got, err := h.IDOf("caseinsensitive")
	require.NoError(t, err)
	require.Equal(t, id, got)

	require.Equal(t, id, h.Put("CaseInSensitive", "x", false))
	_, err = h.IDOf("caseinsensitive")
	require.ErrorIs(t, err, ErrNoSuchElement)

	got, err = h.IDOf("CaseInSensitive")
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestHolder_CaseInsensitiveNamesSharingAFold(t *testing.T) {
	h := NewHolder[string]()
	first := h.Put("Abc", "first", true)
	second := h.Put("ABC", "second", true)

	got, err := h.IDOf("abc")
	require.NoError(t, err)
	require.Equal(t, first, got)
	got, err = h.IDOf("ABC")
	require.NoError(t, err)
	require.Equal(t, second, got)

	h.Unregister("ABC")
	got, err = h.IDOf("abc")
	require.NoError(t, err)
	require.Equal(t, first, got)

	h.Put("ABC", "second", true)
	h.Unregister("Abc")
	got, err = h.IDOf("abc")
	require.NoError(t, err)
	require.Equal(t, second, got)

	// Retiring in a tombstoned copy leaves the source lookups intact.
	tomb := h.Tombstone(map[int]bool{})
	_, err = tomb.IDOf("abc")
	require.ErrorIs(t, err, ErrNoSuchElement)
	got, err = h.IDOf("abc")
	require.NoError(t, err)
	require.Equal(t, second, got)
}

func TestHolder_CaseSensitiveByDefault(t *testing.T) {
	h := NewHolder[string]()
	h.Put("Exact", "x", false)
	_, ok := h.Get("exact")
	require.False(t, ok)
}

func TestHolder_Unregister(t *testing.T) {
	h := NewHolder[string]()
	h.Put("A", "a", true)
	h.Put("B", "b", false)

	h.Unregister("A")
	_, ok := h.Get("A")
	require.False(t, ok)
	_, ok = h.Get("a")
	require.False(t, ok)
	require.Equal(t, 1, h.Len())

	h.Unregister("missing")
	require.Equal(t, 0, h.Put("A", "a", false))
	require.Equal(t, 2, h.Put("Z", "z", false))
}
