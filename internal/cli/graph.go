package cli

import (
	"fmt"
	"io"
	"sort"
)

// PrintGraph writes a deterministic, human-readable rendering of desc's
// task adjacency (by Requires) to w, sorted by task id so the output is
// stable across runs regardless of file order.
func PrintGraph(w io.Writer, desc *BuildDescription) error {
	specs := make([]TaskSpec, len(desc.Tasks))
	copy(specs, desc.Tasks)
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })

	for _, spec := range specs {
		if _, err := fmt.Fprintf(w, "%s [%s]\n", spec.ID, spec.Kind); err != nil {
			return err
		}
		requires := append([]string(nil), spec.Requires...)
		sort.Strings(requires)
		for _, req := range requires {
			if _, err := fmt.Fprintf(w, "  requires %s\n", req); err != nil {
				return err
			}
		}
		for _, p := range watchedPathsOf(spec) {
			if _, err := fmt.Fprintf(w, "  reads %s\n", p); err != nil {
				return err
			}
		}
		if spec.Output != "" {
			if _, err := fmt.Fprintf(w, "  writes %s\n", spec.Output); err != nil {
				return err
			}
		}
		if spec.Dst != "" {
			if _, err := fmt.Fprintf(w, "  writes %s\n", spec.Dst); err != nil {
				return err
			}
		}
	}
	return nil
}

func watchedPathsOf(spec TaskSpec) []string {
	paths := append([]string(nil), spec.Reads...)
	if spec.Src != "" {
		paths = append(paths, spec.Src)
	}
	sort.Strings(paths)
	return paths
}
