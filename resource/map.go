package resource

import (
	"reflect"
	"sync"

	"piebuild"
)

// MapEntry addresses one key within a named, process-wide shared map — the
// resource equivalent of an in-memory cache entry, useful for tasks that
// exchange values without going through the filesystem.
//
// Grounded on the project's research pack (original_source/pie/src/resource/map.rs):
// Go has no trait-object equivalent of MapKey's generic Value association,
// so the map is typed any->any and callers type-assert, mirroring how
// Task/Resource identity is erased elsewhere in this engine (see package
// erased).
type MapEntry struct {
	MapName string
	EntryID string
}

// NewMapEntry addresses entryID within the named map.
func NewMapEntry(mapName, entryID string) MapEntry {
	return MapEntry{MapName: mapName, EntryID: entryID}
}

func (e MapEntry) Key() piebuild.ResourceKey {
	return piebuild.ResourceKey{Kind: "map:" + e.MapName, ID: e.EntryID}
}

// mapValue is what Map.Reader returns and what MapEquals stamps: the
// looked-up value together with whether the key was present at all.
type mapValue struct {
	Value   any
	Present bool
}

// Map is a Provider backing a single shared, process-wide map of entries.
// Register one instance per map name.
type Map struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewMap constructs an empty Map provider.
func NewMap() *Map { return &Map{data: make(map[string]any)} }

func (m *Map) Reader(key piebuild.ResourceKey) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key.ID]
	return mapValue{Value: v, Present: ok}, nil
}

func (m *Map) Writer(key piebuild.ResourceKey) (any, error) {
	return &MapWriter{m: m, entryID: key.ID}, nil
}

// MapWriter is the writer handle for a single MapEntry.
type MapWriter struct {
	m       *Map
	entryID string
}

// Get returns the entry's current value.
func (w *MapWriter) Get() (any, bool) {
	w.m.mu.RLock()
	defer w.m.mu.RUnlock()
	v, ok := w.m.data[w.entryID]
	return v, ok
}

// Set stores value for the entry.
func (w *MapWriter) Set(value any) {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	w.m.data[w.entryID] = value
}

// Delete removes the entry.
func (w *MapWriter) Delete() {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	delete(w.m.data, w.entryID)
}

// MapEquals is a ResourceChecker that considers a map entry dependency
// consistent as long as its value compares equal, via reflect.DeepEqual,
// to the value recorded at stamp time.
type MapEquals struct{}

func (MapEquals) Stamp(key piebuild.ResourceKey, state any) (piebuild.Stamp, error) {
	provider, ok := state.(piebuild.Provider)
	if !ok {
		return mapValue{}, nil
	}
	v, err := provider.Reader(key)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (MapEquals) StampReader(r any) (piebuild.Stamp, error) { return r, nil }

func (MapEquals) StampWriter(w any) (piebuild.Stamp, error) {
	mw := w.(*MapWriter)
	v, ok := mw.Get()
	return mapValue{Value: v, Present: ok}, nil
}

func (e MapEquals) Check(key piebuild.ResourceKey, state any, prior piebuild.Stamp) (*piebuild.Inconsistency, error) {
	cur, err := e.Stamp(key, state)
	if err != nil {
		return nil, err
	}
	if reflect.DeepEqual(cur, prior) {
		return nil, nil
	}
	return &piebuild.Inconsistency{Reason: "map entry changed", Prior: prior, Current: cur}, nil
}
