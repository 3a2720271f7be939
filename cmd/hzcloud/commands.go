package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/source-c/go-hzcloud"
	"github.com/source-c/go-hzcloud/logger"
	"github.com/spf13/cobra"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitConfigError = 2
	exitConnError   = 3
)

type workload func(ctx context.Context, grid hzcloud.Grid, out io.Writer, opts ...hzcloud.WorkloadOption) error

type app struct {
	envFile    string
	logLevel   string
	iterations int
	logOut     io.Writer
	connect    func(ctx context.Context, cfg *hzcloud.ConnectionConfig, opts ...hzcloud.ClientOption) (grid, error)
}

type grid interface {
	hzcloud.Grid
	Close(ctx context.Context) error
}

func connectClient(ctx context.Context, cfg *hzcloud.ConnectionConfig, opts ...hzcloud.ClientOption) (grid, error) {
	cli, err := hzcloud.Connect(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return cli, nil
}

func run(ctx context.Context, args []string) int {
	a := &app{logOut: os.Stderr, connect: connectClient}
	root := a.rootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return exitCode(err)
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var cfgErr *hzcloud.ConfigurationError
	var connErr *hzcloud.ConnectionError
	switch {
	case errors.As(err, &cfgErr):
		return exitConfigError
	case errors.As(err, &connErr):
		return exitConnError
	default:
		return exitFailure
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hzcloud",
		Short:         "Connect to a managed Hazelcast cluster over TLS and run a demo workload",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file with HZCLOUD_* settings")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, off (overrides HZCLOUD_LOG_LEVEL)")

	mapCmd := &cobra.Command{
		Use:   "map",
		Short: "Fill the map named 'map' with random entries until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWorkload(cmd, hzcloud.RunMapDemo)
		},
	}
	mapCmd.Flags().IntVar(&a.iterations, "iterations", 0, "stop after this many iterations, 0 runs until interrupted")

	sqlCmd := &cobra.Command{
		Use:   "sql",
		Short: "Seed the 'cities' map and query it with SQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWorkload(cmd, hzcloud.RunSQLDemo)
		},
	}

	root.AddCommand(mapCmd, sqlCmd)
	return root
}

func (a *app) runWorkload(cmd *cobra.Command, w workload) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var loadOpts []hzcloud.LoadOption
	if len(a.envFile) != 0 {
		loadOpts = append(loadOpts, hzcloud.WithEnvFile(a.envFile))
	}
	cfg, err := hzcloud.LoadConfig(ctx, loadOpts...)
	if err != nil {
		return err
	}
	levelName := cfg.LogLevel
	if len(a.logLevel) != 0 {
		levelName = a.logLevel
	}
	lvl, err := logger.ParseLevel(levelName)
	if err != nil {
		return &hzcloud.ConfigurationError{ClientError: hzcloud.ClientError{Message: err.Error()}}
	}
	sink, err := logger.NewSink(log.New(a.logOut, "", log.LstdFlags|log.Lmicroseconds), lvl)
	if err != nil {
		return err
	}
	lg := &logger.Logger{Sink: sink}

	cli, err := a.connect(ctx, cfg, hzcloud.WithLoggingSink(sink))
	if err != nil {
		return err
	}
	defer func() {
		if err := cli.Close(context.Background()); err != nil {
			lg.Warnf("%s", err)
		}
	}()
	_, _ = fmt.Fprintln(out, "Connection Successful!")

	return w(ctx, cli, out, hzcloud.WithIterations(a.iterations), hzcloud.WithWorkloadLogger(lg))
}
