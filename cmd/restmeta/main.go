package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toyz/restmeta/internal/cli"
	"github.com/toyz/restmeta/internal/server"
	"github.com/toyz/restmeta/internal/utils"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand
type app struct {
	out, errOut io.Writer
	configFile  string

	config      *cli.Config
	logger      *zap.Logger
	diagnostics *utils.DiagnosticSystem
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "restmeta",
		Short: "Resource metadata compiler",
		Long: `restmeta scans Go sources for //rest:: annotations and compiles them into
route metadata for each resource type.

Roots may use Go-style patterns: ./... scans the working directory recursively.
Settings are read from restmeta.yaml, RESTMETA_* environment variables and flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "path to config file (default ./restmeta.yaml)")
	flags.String("module", "", "import path overriding go.mod")
	flags.StringSlice("ext", nil, "unit file extensions (default .go)")
	flags.String("handle-policy", "", "handle requirement policy: none, without-action, verbs or declared")
	flags.StringSlice("handle-verbs", nil, "verbs that require a handle under the verbs policy")
	flags.Int("cache-size", 0, "maximum number of parsed units kept in memory")
	flags.String("format", "", "output format: table, json or yaml")
	flags.String("file", "", "generated file name")
	flags.String("package", "", "generated package name")
	flags.String("addr", "", "inspection server address")
	flags.BoolP("verbose", "v", false, "enable verbose output")
	flags.BoolP("quiet", "q", false, "only show errors and final results")

	root.AddCommand(
		a.compileCmd(),
		a.routesCmd(),
		a.generateCmd(),
		a.cleanCmd(),
		a.serveCmd(),
	)
	return root
}

// setup loads configuration and builds the logger and diagnostics
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig(a.configFile, cmd.Flags())
	if err != nil {
		return a.fail(err)
	}
	withRoots := cfg.WithRoots(args)
	a.config = &withRoots

	if a.logger, err = newLogger(a.config.Verbose); err != nil {
		return a.fail(err)
	}
	a.diagnostics = a.newDiagnostics(a.config.DiagnosticLevel())
	return nil
}

func (a *app) newDiagnostics(level utils.DiagnosticLevel) *utils.DiagnosticSystem {
	if a.out == os.Stdout && a.errOut == os.Stderr {
		return utils.NewDiagnosticSystem(level)
	}
	return utils.NewDiagnosticSystemWithWriters(level, a.out, a.errOut)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func (a *app) fail(err error) error {
	color.New(color.FgRed, color.Bold).Fprint(a.errOut, "Error: ")
	fmt.Fprintln(a.errOut, err)
	return err
}

func (a *app) compileCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "compile [roots...]",
		Short:   "Compile resource metadata and report failures",
		PreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.logger.Sync()

			runner := cli.NewRunner(a.config, a.diagnostics, a.logger)
			if _, err := runner.Compile(); err != nil {
				runner.Reporter().ReportError(err)
				return err
			}
			runner.PrintSummary("Compilation complete")
			return nil
		},
	}
}

func (a *app) routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "routes [roots...]",
		Short:   "Print the compiled route table",
		PreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.logger.Sync()

			diagnostics := a.diagnostics
			if !a.config.Verbose {
				diagnostics = a.newDiagnostics(utils.DiagnosticError)
			}
			runner := cli.NewRunner(a.config, diagnostics, a.logger)
			if err := runner.Routes(a.out); err != nil {
				runner.Reporter().ReportError(err)
				return err
			}
			return nil
		},
	}
}

func (a *app) generateCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:     "generate [roots...]",
		Short:   "Write a Go source file that rebuilds the route table",
		PreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.logger.Sync()

			runner := cli.NewRunner(a.config, a.diagnostics, a.logger)
			if _, err := runner.Generate(outDir); err != nil {
				runner.Reporter().ReportError(err)
				return err
			}
			runner.PrintSummary("Generation complete")
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func (a *app) cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clean [roots...]",
		Short:   "Delete generated route files",
		PreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.config.Roots) == 0 {
				return a.fail(fmt.Errorf("at least one root is required"))
			}

			removed, err := cli.NewCleaner(a.config.Output.File).CleanGeneratedFiles(a.config.Roots)
			if err != nil {
				return a.fail(err)
			}
			for _, path := range removed {
				a.diagnostics.List("removed %s", path)
			}
			a.diagnostics.Complete(fmt.Sprintf("%d generated file(s) removed", len(removed)))
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve [roots...]",
		Short:   "Compile and serve the metadata over HTTP",
		PreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.logger.Sync()

			runner := cli.NewRunner(a.config, a.diagnostics, a.logger)
			compiled, err := runner.Compile()
			if err != nil {
				runner.Reporter().ReportError(err)
				return err
			}

			srv := server.New(compiled, a.config.Server.Addr, a.logger.Named("server"))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()
			a.diagnostics.Info("serving %d resources on %s", compiled.Len(), srv.Addr())

			select {
			case err := <-errCh:
				if err != nil {
					return a.fail(err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return a.fail(err)
			}
			return <-errCh
		},
	}
}
