// Command piebuild is a demonstration front end over the piebuild engine:
// it loads a declarative YAML build description, wires it into tasks, and
// runs a top-down build, a change-driven watch loop, or prints the task
// graph. It is not part of the engine's soundness surface (see
// piebuild/internal/cli).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"piebuild/internal/cli"
	"piebuild/tracker"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "piebuild",
	Short: "piebuild runs incremental builds described in a YAML file",
}

func init() {
	rootCmd.PersistentFlags().StringP("file", "f", "build.yaml", "Build description YAML file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON instead of a console format")
	rootCmd.PersistentFlags().String("run-state", "", "Path to a bbolt run-state database (disabled if empty)")
	rootCmd.PersistentFlags().StringSlice("target", nil, "Task ids to build (defaults to every task)")
	rootCmd.PersistentFlags().String("serve-metrics", "", "If set, serve Prometheus metrics on this address (e.g. :9090)")

	rootCmd.AddCommand(buildCmd, watchCmd, graphCmd)
}

func optionsFromFlags(cmd *cobra.Command) (cli.Options, *http.Server, error) {
	file, _ := cmd.Flags().GetString("file")
	logLevel, _ := cmd.Flags().GetString("log-level")
	logJSON, _ := cmd.Flags().GetBool("log-json")
	runState, _ := cmd.Flags().GetString("run-state")
	targets, _ := cmd.Flags().GetStringSlice("target")
	serveMetrics, _ := cmd.Flags().GetString("serve-metrics")

	opts := cli.Options{
		File:         file,
		Targets:      targets,
		LogLevel:     logLevel,
		LogJSON:      logJSON,
		RunStatePath: runState,
	}

	var server *http.Server
	if serveMetrics != "" {
		registry := prometheus.NewRegistry()
		opts.Metrics = &cli.Metrics{Tracker: tracker.NewMetrics(registry)}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		server = &http.Server{Addr: serveMetrics, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "piebuild: metrics server: %v\n", err)
			}
		}()
	}
	return opts, server, nil
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run a top-down build of the target tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, server, err := optionsFromFlags(cmd)
		if err != nil {
			return err
		}
		if server != nil {
			defer server.Close()
		}
		result, err := cli.RunBuild(opts)
		if err != nil {
			return err
		}
		for id, output := range result.Outputs {
			fmt.Printf("%s: %v\n", id, output)
		}
		for _, ce := range result.CheckErrors {
			fmt.Fprintln(os.Stderr, ce)
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Build once, then rebuild affected tasks as files change",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, server, err := optionsFromFlags(cmd)
		if err != nil {
			return err
		}
		if server != nil {
			defer server.Close()
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.RunWatch(ctx, opts)
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the task graph described by the build file",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		desc, _, err := cli.LoadConfig(file)
		if err != nil {
			return err
		}
		return cli.PrintGraph(os.Stdout, desc)
	},
}
