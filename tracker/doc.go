// Package tracker collects concrete piebuild.Tracker implementations so the
// root engine package stays free of logging/metrics dependencies: Noop (the
// engine's own default, duplicated here as the public equivalent),
// Composite (fan out to several trackers), Logging (zerolog-backed, ported
// from the research pack's tracker/writing.rs indentation scheme), and
// Metrics (prometheus-backed, ported from tracker/metrics.rs's Report
// counters).
package tracker
