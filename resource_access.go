package piebuild

import (
	"fmt"

	"piebuild/internal/graph"
)

// doReadResource and doWriteResource are shared by both drivers: a direct
// resource access is a leaf operation that never recurses into another
// task, so top-down and bottom-up have nothing different to do here (spec
// §4.8). Each records the access as a dependency edge from the currently
// executing task, when there is one, and enforces the hidden-dependency and
// overlapping-writer invariants before doing so.

func (s *Session) doReadResource(r Resource, checker ResourceChecker) (any, error) {
	store := s.pie.store
	key := r.Key()
	node := store.internResource(r)

	provider, ok := s.pie.providerFor(key)
	if !ok {
		return nil, fmt.Errorf("piebuild: no provider registered for resource kind %q", key.Kind)
	}

	s.pie.tracker.ReadStart(r)
	handle, err := provider.Reader(key)
	if err != nil {
		s.pie.tracker.ReadEnd(r, err)
		return nil, err
	}

	stamp, err := stampReader(checker, key, provider, handle)
	if err != nil {
		s.pie.tracker.ReadEnd(r, err)
		return nil, err
	}

	if s.currentExecutingTask != nil {
		readerNode := *s.currentExecutingTask
		if writerNode, ok := store.writerOf(node); ok && writerNode != readerNode {
			if !store.hasTransitivePath(readerNode, writerNode) {
				readerTask, _ := store.taskOf(readerNode)
				writerTask, _ := store.taskOf(writerNode)
				panic(newHiddenDependencyError(SoundnessHiddenDependencyOnRead, readerTask, writerTask, r))
			}
		}
		store.addReadsEdge(readerNode, node, ReadsRecord{Resource: key, Checker: checker, Stamp: stamp})
	}

	s.pie.tracker.ReadEnd(r, nil)
	return handle, nil
}

func (s *Session) doWriteResource(r Resource, checker ResourceChecker, fn func(w any) error) error {
	store := s.pie.store
	key := r.Key()
	node := store.internResource(r)

	provider, ok := s.pie.providerFor(key)
	if !ok {
		return fmt.Errorf("piebuild: no provider registered for resource kind %q", key.Kind)
	}

	var writerNode graph.NodeID
	hasWriterNode := s.currentExecutingTask != nil
	if hasWriterNode {
		writerNode = *s.currentExecutingTask

		if existing, ok := store.writerOf(node); ok && existing != writerNode {
			existingTask, _ := store.taskOf(existing)
			writerTask, _ := store.taskOf(writerNode)
			panic(newOverlapError(r, existingTask, writerTask))
		}
		for _, readerNode := range store.readersOf(node) {
			if readerNode == writerNode {
				continue
			}
			if !store.hasTransitivePath(readerNode, writerNode) {
				readerTask, _ := store.taskOf(readerNode)
				writerTask, _ := store.taskOf(writerNode)
				panic(newHiddenDependencyError(SoundnessHiddenDependencyOnWrite, readerTask, writerTask, r))
			}
		}
	}

	s.pie.tracker.WriteStart(r)
	handle, err := provider.Writer(key)
	if err != nil {
		s.pie.tracker.WriteEnd(r, err)
		return err
	}

	if err := fn(handle); err != nil {
		s.pie.tracker.WriteEnd(r, err)
		return err
	}

	stamp, err := stampWriter(checker, key, provider, handle)
	if err != nil {
		s.pie.tracker.WriteEnd(r, err)
		return err
	}

	if hasWriterNode {
		store.addWritesEdge(writerNode, node, WritesRecord{Resource: key, Checker: checker, Stamp: stamp})
	}

	s.pie.tracker.WriteEnd(r, nil)
	return nil
}

// stampReader prefers a checker's ReaderStamper capability, when present, to
// avoid a second open/stat of a resource whose reader handle is already in
// hand; otherwise it falls back to the checker's provider-state stamp.
func stampReader(checker ResourceChecker, key ResourceKey, provider Provider, handle any) (Stamp, error) {
	if rs, ok := checker.(ReaderStamper); ok {
		return rs.StampReader(handle)
	}
	return checker.Stamp(key, provider)
}

// stampWriter is the write-side analogue of stampReader.
func stampWriter(checker ResourceChecker, key ResourceKey, provider Provider, handle any) (Stamp, error) {
	if ws, ok := checker.(WriterStamper); ok {
		return ws.StampWriter(handle)
	}
	return checker.Stamp(key, provider)
}
