package resource

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapWriterRoundTrip(t *testing.T) {
	m := NewMap()
	entry := NewMapEntry("cache", "a")

	handle, err := m.Writer(entry.Key())
	require.NoError(t, err)
	w := handle.(*MapWriter)

	_, ok := w.Get()
	require.False(t, ok)

	w.Set(42)
	v, ok := w.Get()
	require.True(t, ok)
	require.Equal(t, 42, v)

	read, err := m.Reader(entry.Key())
	require.NoError(t, err)
	mv := read.(mapValue)
	require.True(t, mv.Present)
	require.Equal(t, 42, mv.Value)

	w.Delete()
	_, ok = w.Get()
	require.False(t, ok)
}

func TestMapEqualsChecker(t *testing.T) {
	m := NewMap()
	entry := NewMapEntry("cache", "a")

	handle, err := m.Writer(entry.Key())
	require.NoError(t, err)
	w := handle.(*MapWriter)
	w.Set("v1")

	var checker MapEquals
	stamp, err := checker.Stamp(entry.Key(), m)
	require.NoError(t, err)

	inc, err := checker.Check(entry.Key(), m, stamp)
	require.NoError(t, err)
	require.Nil(t, inc)

	w.Set("v2")
	inc, err = checker.Check(entry.Key(), m, stamp)
	require.NoError(t, err)
	require.NotNil(t, inc)
}
