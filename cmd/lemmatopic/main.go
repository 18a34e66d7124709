// Package main provides the lemmatopic binary: lemmatize a directory of
// texts, chunk it, and fit an LDA topic model.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/config"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/metrics"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "lemmatopic"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	a := &app{}
	err := rootCmd(a).ExecuteContext(ctx)
	a.finish()
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries state shared by all subcommands.
type app struct {
	configPath  string
	logLevel    string
	cpuProfile  string
	metricsFile string

	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	stop    func()
}

func rootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Lemma-chunk topic modelling",
		Long: `lemmatopic turns a directory of plain-text documents into a topic model.

Each document is lemmatized, proper nouns are dropped, and the lemma stream
is cut into fixed-size chunks. The chunks form a document-term matrix on
which an LDA model is fitted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	flags.StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.cpuProfile, "cpuprofile", "", "Write a CPU profile into this directory")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")

	cmd.AddCommand(
		runCmd(a),
		lemmatizeCmd(a),
		fitCmd(a),
		topicsCmd(a),
		wordcloudCmd(a),
		docCmd(a),
		runsCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// setup configures logging, profiling, metrics and loads the configuration.
func (a *app) setup() error {
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(a.logLevel)}))
	slog.SetDefault(a.logger)

	if a.cpuProfile != "" {
		a.stop = profile.Start(profile.CPUProfile, profile.ProfilePath(a.cpuProfile), profile.Quiet).Stop
	}
	a.metrics = metrics.New()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return internalerr.Stage(internalerr.StageConfigure, err)
	}
	if err := cfg.FromEnvironment(); err != nil {
		return internalerr.Stage(internalerr.StageConfigure, err)
	}
	a.cfg = cfg
	return nil
}

// finish stops profiling and flushes metrics. It runs even when the
// command failed.
func (a *app) finish() {
	if a.stop != nil {
		a.stop()
	}
	if a.metricsFile != "" && a.metrics != nil {
		if err := a.metrics.WriteFile(a.metricsFile); err != nil {
			slog.Error("write metrics", "err", err)
		}
	}
}
