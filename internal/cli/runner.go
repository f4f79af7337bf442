package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/internal/generator"
	"github.com/toyz/restmeta/internal/utils"
	"github.com/toyz/restmeta/pkg/restmeta"
)

// Summary describes the last compilation run
type Summary struct {
	RunID          string
	Resources      int
	Routes         int
	Failures       int
	GeneratedFiles []string
	Duration       time.Duration
}

// Runner coordinates compilation, rendering and generation for the CLI
type Runner struct {
	config      *Config
	diagnostics *utils.DiagnosticSystem
	reporter    *DiagnosticReporter
	logger      *zap.Logger
	summary     Summary
}

// NewRunner creates a runner. A nil logger discards structured logs.
func NewRunner(config *Config, diagnostics *utils.DiagnosticSystem, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		config:      config,
		diagnostics: diagnostics,
		reporter:    NewDiagnosticReporter(config.Verbose, diagnostics.ErrorOutput()),
		logger:      logger,
	}
}

// Summary returns the summary of the last run
func (r *Runner) Summary() Summary {
	return r.summary
}

// Reporter returns the error reporter
func (r *Runner) Reporter() *DiagnosticReporter {
	return r.reporter
}

// Compile discovers and compiles every resource under the configured roots.
// The table holds every type that compiled; the error aggregates the others.
// Unusable configuration or roots return a nil table.
func (r *Runner) Compile() (*restmeta.Table, error) {
	start := time.Now()
	r.summary = Summary{RunID: uuid.NewString()}

	r.diagnostics.Header("compiling resource metadata")
	r.diagnostics.SourcePaths(r.config.Roots)
	r.diagnostics.Debug("extensions: %v, handle policy: %s", r.config.Extensions, r.config.HandlePolicy)

	res, err := r.config.NewResolver(r.logger)
	if err != nil {
		return nil, err
	}

	r.diagnostics.PhaseHeader("Discovery")
	ids, err := res.Discovery().Discover()
	if err != nil {
		r.diagnostics.PhaseFailure("discovery failed")
		r.summary.Failures = failureCount(err)
		return nil, err
	}
	r.diagnostics.PhaseItem("%d resource type(s)", len(ids))
	if failures := res.Discovery().Failures(); len(failures) > 0 {
		r.diagnostics.Warn("%d source unit(s) or type(s) could not be read", len(failures))
	}
	r.diagnostics.Indent()
	for _, id := range ids {
		r.diagnostics.Verbose("found %s", id)
	}
	r.diagnostics.Unindent()

	r.diagnostics.PhaseHeader("Compilation")
	compiled, err := res.Compile()
	r.diagnostics.Indent()
	for _, class := range compiled.Classes() {
		r.diagnostics.PhaseItem("%s (%d routes)", class.ClassName, len(class.RouteNames()))
	}
	if err != nil {
		r.reportFailures(err)
	}
	r.diagnostics.Unindent()

	r.summary.Resources = compiled.Len()
	r.summary.Routes = len(compiled.Routes())
	r.summary.Failures = failureCount(err)
	r.summary.Duration = time.Since(start)

	r.logger.Debug("compile run finished",
		zap.String("run", r.summary.RunID),
		zap.Int("resources", r.summary.Resources),
		zap.Int("routes", r.summary.Routes),
		zap.Int("failures", r.summary.Failures),
		zap.Duration("duration", r.summary.Duration))

	return compiled, err
}

// Routes compiles and writes the flattened route table in the configured format
func (r *Runner) Routes(w io.Writer) error {
	format, err := ParseOutputFormat(r.config.Output.Format)
	if err != nil {
		return errors.ConfigurationError("output.format", err.Error())
	}

	compiled, err := r.Compile()
	if err != nil {
		return err
	}
	return RenderRoutes(w, compiled, format)
}

// Generate compiles and writes the route table source into outDir. Nothing is
// written when any type fails to compile.
func (r *Runner) Generate(outDir string) (string, error) {
	g, err := generator.New(r.config.Output.Package, r.config.Output.File)
	if err != nil {
		return "", err
	}
	var gen generator.CodeGenerator = g

	compiled, err := r.Compile()
	if err != nil {
		return "", err
	}

	r.diagnostics.PhaseHeader("Generation")
	path, err := gen.WriteTo(outDir, compiled)
	if err != nil {
		r.diagnostics.PhaseFailure("%s", gen.FileName())
		return "", err
	}

	r.diagnostics.Indent()
	r.diagnostics.PhaseItem("%s", path)
	r.diagnostics.Unindent()
	r.summary.GeneratedFiles = append(r.summary.GeneratedFiles, path)
	return path, nil
}

// PrintSummary writes the run statistics
func (r *Runner) PrintSummary(title string) {
	stats := map[string]interface{}{
		"Resources compiled": r.summary.Resources,
		"Routes":             r.summary.Routes,
		"Failures":           r.summary.Failures,
		"Duration":           r.summary.Duration.Round(time.Millisecond),
	}
	if len(r.summary.GeneratedFiles) > 0 {
		stats["Generated files"] = len(r.summary.GeneratedFiles)
	}
	r.diagnostics.Summary(title, stats)
}

func (r *Runner) reportFailures(err error) {
	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) {
		for _, e := range multi.Errors {
			r.diagnostics.PhaseFailure("%s", e.Error())
		}
		return
	}
	r.diagnostics.PhaseFailure("%s", err.Error())
}

func failureCount(err error) int {
	if err == nil {
		return 0
	}
	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) {
		return multi.Count()
	}
	return 1
}

// String renders the summary on one line
func (s Summary) String() string {
	return fmt.Sprintf("%d resources, %d routes, %d failures", s.Resources, s.Routes, s.Failures)
}
