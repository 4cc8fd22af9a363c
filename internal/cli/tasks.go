package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"

	"piebuild"
	"piebuild/resource"
)

// Registry resolves a task id named in a TaskSpec's Requires list back to
// the piebuild.Task instance that implements it. The build description is
// an adjacency-by-id list, not a Go object graph, so lookups are deferred
// to Execute time rather than resolved at construction.
type Registry struct {
	tasks map[string]piebuild.Task
}

// Get returns the task registered under id, or nil if none was.
func (r *Registry) Get(id string) piebuild.Task { return r.tasks[id] }

// BuildRegistry instantiates one piebuild.Task per TaskSpec in desc.
func BuildRegistry(desc *BuildDescription) (*Registry, error) {
	reg := &Registry{tasks: make(map[string]piebuild.Task, len(desc.Tasks))}
	for _, spec := range desc.Tasks {
		switch spec.Kind {
		case "command":
			reg.tasks[spec.ID] = &CommandTask{spec: spec, registry: reg}
		case "copy":
			reg.tasks[spec.ID] = &CopyTask{spec: spec, registry: reg}
		default:
			return nil, fmt.Errorf("cli: task %q: unknown kind %q", spec.ID, spec.Kind)
		}
	}
	return reg, nil
}

// Tasks returns every instantiated task, in build-description order.
func (r *Registry) Tasks(desc *BuildDescription) []piebuild.Task {
	out := make([]piebuild.Task, 0, len(desc.Tasks))
	for _, spec := range desc.Tasks {
		out = append(out, r.tasks[spec.ID])
	}
	return out
}

func requireAll(ctx *piebuild.Context, reg *Registry, ids []string) error {
	for _, id := range ids {
		if _, err := ctx.RequireDefault(reg.Get(id)); err != nil {
			return err
		}
	}
	return nil
}

// CommandOutput is what a CommandTask returns. Comparing it via Equals
// gives the engine early cutoff when a command's stdout hasn't changed
// even though the command itself ran again.
type CommandOutput struct {
	Stdout   string
	ExitCode int
}

// CommandTask runs an external command, optionally writing its captured
// stdout to a single output file. The write goes through Context.Write so
// the engine attributes and checks it, rather than the external process
// touching the filesystem behind the engine's back.
type CommandTask struct {
	spec     TaskSpec
	registry *Registry
}

func (t *CommandTask) Key() piebuild.TaskKey {
	return piebuild.TaskKey{Kind: "cli.command", ID: t.spec.ID}
}

func (t *CommandTask) Execute(ctx *piebuild.Context) (any, error) {
	if err := requireAll(ctx, t.registry, t.spec.Requires); err != nil {
		return nil, err
	}
	for _, p := range t.spec.Reads {
		if _, err := ctx.Read(resource.NewFile(p), resource.Hash{}); err != nil {
			return nil, err
		}
	}

	cmd := exec.Command(t.spec.Command[0], t.spec.Command[1:]...)
	cmd.Dir = t.spec.Dir
	var buf, stderr bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	exitCode := 0
	if runErr != nil {
		exitErr, ok := runErr.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("cli: task %q: %w", t.spec.ID, runErr)
		}
		exitCode = exitErr.ExitCode()
	}
	output := CommandOutput{Stdout: buf.String(), ExitCode: exitCode}
	if exitCode != 0 {
		return output, fmt.Errorf("cli: task %q: command exited %d:\n%s", t.spec.ID, exitCode, buf.String()+stderr.String())
	}

	if t.spec.Output != "" {
		err := ctx.Write(resource.NewFile(t.spec.Output), resource.Hash{}, func(w any) error {
			f := w.(*os.File)
			_, err := f.Write(buf.Bytes())
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return output, nil
}

// CopyTask copies Src to Dst, declaring a Reads dependency on Src and a
// Writes dependency on Dst.
type CopyTask struct {
	spec     TaskSpec
	registry *Registry
}

func (t *CopyTask) Key() piebuild.TaskKey {
	return piebuild.TaskKey{Kind: "cli.copy", ID: t.spec.ID}
}

func (t *CopyTask) Execute(ctx *piebuild.Context) (any, error) {
	if err := requireAll(ctx, t.registry, t.spec.Requires); err != nil {
		return nil, err
	}

	handle, err := ctx.Read(resource.NewFile(t.spec.Src), resource.Hash{})
	if err != nil {
		return nil, err
	}
	of := handle.(*resource.OpenFile)
	if !of.Exists() {
		return nil, fmt.Errorf("cli: task %q: source %s does not exist", t.spec.ID, t.spec.Src)
	}
	data, err := io.ReadAll(of.File)
	if err != nil {
		return nil, err
	}

	err = ctx.Write(resource.NewFile(t.spec.Dst), resource.Hash{}, func(w any) error {
		f := w.(*os.File)
		_, err := f.Write(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t.spec.Dst, nil
}
