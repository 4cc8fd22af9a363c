package piebuild

// Context is what a running task uses to declare its dependencies. It is
// handed to Task.Execute and is only valid for the duration of that call;
// every method forwards to whichever driver (top-down or bottom-up) is
// currently active on the owning Session, so nested calls re-enter the
// same build rather than starting a new one (spec §5: the call stack of
// the driver is the scheduler).
type Context struct {
	session *Session
}

// driver is the capability a Context forwards to. topDownDriver and
// bottomUpDriver each implement it with different consistency-checking and
// scheduling strategies, per spec §4.6/§4.7.
type driver interface {
	requireTask(t Task, checker OutputChecker) (any, error)
	readResource(r Resource, checker ResourceChecker) (any, error)
	writeResource(r Resource, checker ResourceChecker, fn func(w any) error) error
}

// Require makes t consistent (executing it if necessary) and returns its
// output, recording a Requires dependency from the currently executing
// task (if any) to t using checker.
func (c *Context) Require(t Task, checker OutputChecker) (any, error) {
	return c.session.activeDriver.requireTask(t, checker)
}

// RequireDefault is Require with the default Equals output checker.
func (c *Context) RequireDefault(t Task) (any, error) {
	return c.Require(t, DefaultOutputChecker())
}

// Read opens r for reading and records a Reads dependency from the
// currently executing task to r using checker, stamped from the reader
// handle when the checker supports ReaderStamper.
func (c *Context) Read(r Resource, checker ResourceChecker) (any, error) {
	return c.session.activeDriver.readResource(r, checker)
}

// Write opens r for writing, invokes fn with the writer handle, and once
// fn returns records a Writes dependency using checker, stamped from the
// writer handle when the checker supports WriterStamper.
func (c *Context) Write(r Resource, checker ResourceChecker, fn func(w any) error) error {
	return c.session.activeDriver.writeResource(r, checker, fn)
}
