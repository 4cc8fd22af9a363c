package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"piebuild"
	"piebuild/resource"
)

// RunWatch runs an initial top-down build, then keeps a single Session open
// and feeds every subsequent write or create event on a watched path (see
// BuildDescription.WatchedPaths) into the bottom-up driver
// (spec §4.7) via Session.Changed/BuildAffected, until ctx is cancelled.
// Each rebuild cycle resets the session's consistency memoization first, so
// a node found consistent in one cycle can't mask a change that arrives in
// a later one. This is the CLI's demonstration of change-driven rebuilding;
// the engine itself has no notion of a filesystem watch.
func RunWatch(ctx context.Context, opts Options) error {
	desc, raw, err := LoadConfig(opts.File)
	if err != nil {
		return err
	}
	reg, err := BuildRegistry(desc)
	if err != nil {
		return err
	}
	targets, err := targetTasks(desc, reg, opts)
	if err != nil {
		return err
	}

	if opts.RunStatePath != "" {
		if prior, werr := WarnAboutPriorRun(opts.RunStatePath); werr == nil && len(prior) > 0 {
			fmt.Fprintln(os.Stderr, "piebuild watch: previous run ended with check errors:")
			for _, ce := range prior {
				fmt.Fprintf(os.Stderr, "  %s\n", ce)
			}
		}
	}

	pie := buildEngine(opts)
	defer pie.Close()
	session, err := pie.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()

	for _, t := range targets {
		if _, err := session.Require(t); err != nil {
			return fmt.Errorf("cli: initial build failed on %s: %w", t.Key(), err)
		}
	}
	if opts.RunStatePath != "" {
		errs := checkErrorStrings(session)
		if err := recordRun(opts.RunStatePath, raw, errs); err != nil {
			return err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cli: start filesystem watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, p := range desc.WatchedPaths() {
		dir := filepath.Dir(p)
		if watchedDirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("cli: watch %s: %w", dir, err)
		}
		watchedDirs[dir] = true
	}

	paths := make(map[string]bool)
	for _, p := range desc.WatchedPaths() {
		paths[p] = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !paths[event.Name] || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			session.ResetConsistency()
			if err := session.Changed(resource.NewFile(event.Name)); err != nil {
				return err
			}
			if err := session.BuildAffected(); err != nil {
				return err
			}
			if opts.RunStatePath != "" {
				if err := recordRun(opts.RunStatePath, raw, checkErrorStrings(session)); err != nil {
					return err
				}
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "piebuild watch: watcher error: %v\n", werr)
		}
	}
}

func checkErrorStrings(session *piebuild.Session) []string {
	ces := session.CheckErrors()
	out := make([]string, len(ces))
	for i, ce := range ces {
		out[i] = ce.Error()
	}
	return out
}
