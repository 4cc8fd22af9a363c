package tracker

import (
	"sync"

	"github.com/rs/zerolog"

	"piebuild"
)

// Logging is a Tracker that writes one structured zerolog event per
// lifecycle event, with an "indent" field tracking nesting depth the same
// way the research pack's writing tracker indents its plain-text log —
// rendered here as a field instead of leading whitespace, since zerolog
// output is consumed as JSON, not read as a text transcript.
type Logging struct {
	logger zerolog.Logger

	mu     sync.Mutex
	indent int
}

var _ piebuild.Tracker = (*Logging)(nil)

// NewLogging wraps logger, tagging every event with component="piebuild".
func NewLogging(logger zerolog.Logger) *Logging {
	return &Logging{logger: logger.With().Str("component", "piebuild").Logger()}
}

func (l *Logging) push() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.indent
	l.indent++
	return n
}

func (l *Logging) pop() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.indent > 0 {
		l.indent--
	}
	return l.indent
}

func (l *Logging) depth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indent
}

func (l *Logging) BuildStart() {
	l.logger.Info().Int("indent", l.push()).Msg("build start")
}

func (l *Logging) BuildEnd() {
	l.logger.Info().Int("indent", l.pop()).Msg("build end")
}

func (l *Logging) RequireStart(task piebuild.Task) {
	l.logger.Debug().Int("indent", l.push()).Stringer("task", task.Key()).Msg("→ require")
}

func (l *Logging) RequireEnd(task piebuild.Task, output any, err error) {
	e := l.logger.Debug().Int("indent", l.pop()).Stringer("task", task.Key())
	if err != nil {
		e.Err(err).Msg("← require failed")
		return
	}
	e.Interface("output", output).Msg("← require")
}

func (l *Logging) ReadStart(r piebuild.Resource) {
	l.logger.Trace().Int("indent", l.depth()).Stringer("resource", r.Key()).Msg("read start")
}

func (l *Logging) ReadEnd(r piebuild.Resource, err error) {
	e := l.logger.Trace().Int("indent", l.depth()).Stringer("resource", r.Key())
	if err != nil {
		e.Err(err).Msg("read failed")
		return
	}
	e.Msg("read end")
}

func (l *Logging) WriteStart(r piebuild.Resource) {
	l.logger.Trace().Int("indent", l.depth()).Stringer("resource", r.Key()).Msg("write start")
}

func (l *Logging) WriteEnd(r piebuild.Resource, err error) {
	e := l.logger.Trace().Int("indent", l.depth()).Stringer("resource", r.Key())
	if err != nil {
		e.Err(err).Msg("write failed")
		return
	}
	e.Msg("write end")
}

func (l *Logging) CheckTaskStart(task piebuild.Task) {
	l.logger.Debug().Int("indent", l.push()).Stringer("task", task.Key()).Msg("? check task")
}

func (l *Logging) CheckTaskEnd(task piebuild.Task, inc *piebuild.Inconsistency, err error) {
	e := l.logger.Debug().Int("indent", l.pop()).Stringer("task", task.Key())
	switch {
	case err != nil:
		e.Err(err).Msg("☒ check task error")
	case inc != nil:
		e.Str("reason", inc.Reason).Msg("☒ check task inconsistent")
	default:
		e.Msg("☑ check task consistent")
	}
}

func (l *Logging) CheckResourceStart(r piebuild.Resource) {
	l.logger.Trace().Int("indent", l.depth()).Stringer("resource", r.Key()).Msg("? check resource")
}

func (l *Logging) CheckResourceEnd(r piebuild.Resource, inc *piebuild.Inconsistency, err error) {
	e := l.logger.Trace().Int("indent", l.depth()).Stringer("resource", r.Key())
	switch {
	case err != nil:
		e.Err(err).Msg("☒ check resource error")
	case inc != nil:
		e.Str("reason", inc.Reason).Msg("☒ check resource inconsistent")
	default:
		e.Msg("☑ check resource consistent")
	}
}

func (l *Logging) ExecuteStart(task piebuild.Task) {
	l.logger.Info().Int("indent", l.push()).Stringer("task", task.Key()).Msg("→ execute")
}

func (l *Logging) ExecuteEnd(task piebuild.Task, output any, err error) {
	e := l.logger.Info().Int("indent", l.pop()).Stringer("task", task.Key())
	if err != nil {
		e.Err(err).Msg("← execute failed")
		return
	}
	e.Msg("← execute")
}

func (l *Logging) ScheduleAffectedByResource(r piebuild.Resource, scheduled []piebuild.Task) {
	l.logger.Debug().Int("indent", l.depth()).Stringer("resource", r.Key()).Int("scheduled", len(scheduled)).Msg("¿ schedule affected by resource")
}

func (l *Logging) ScheduleAffectedByTask(task piebuild.Task, scheduled []piebuild.Task) {
	l.logger.Debug().Int("indent", l.depth()).Stringer("task", task.Key()).Int("scheduled", len(scheduled)).Msg("¿ schedule affected by task")
}

func (l *Logging) ScheduleTask(task piebuild.Task) {
	l.logger.Debug().Int("indent", l.depth()).Stringer("task", task.Key()).Msg("↑ schedule")
}
