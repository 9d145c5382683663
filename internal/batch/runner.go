// Package batch converts payload exports with registry transforms. Convert
// writes one output file for a single transform; RunAll does the same for
// every registered transform.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/RowanDark/payloadforge/internal/logging"
	"github.com/RowanDark/payloadforge/internal/observability/metrics"
)

// Registry is the part of the transform registry the runner consumes.
type Registry interface {
	List() []string
	Apply(name, input string) (string, error)
}

// Result describes one written output file.
type Result struct {
	Transform string
	Output    string
	Payloads  int
	Duration  time.Duration
}

// Failure records a transform whose output could not be produced.
type Failure struct {
	Transform string
	Err       error
}

// Summary is the outcome of RunAll, sorted by transform name.
type Summary struct {
	Source    string
	Payloads  int
	Succeeded []Result
	Failed    []Failure
}

type Option func(*Runner)

func WithOutputDir(dir string) Option {
	return func(r *Runner) {
		r.outputDir = dir
	}
}

func WithPayloadField(field string) Option {
	return func(r *Runner) {
		r.field = field
	}
}

// WithWorkers bounds how many transforms RunAll converts at once.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithJournal(j *logging.Journal) Option {
	return func(r *Runner) {
		r.journal = j
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// Runner is safe for concurrent use once constructed.
type Runner struct {
	registry  Registry
	outputDir string
	field     string
	workers   int
	journal   *logging.Journal
	metrics   *metrics.Recorder
	logger    *log.Logger
}

func NewRunner(registry Registry, opts ...Option) *Runner {
	r := &Runner{
		registry:  registry,
		outputDir: "tests",
		field:     "payload",
		workers:   4,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OutputPath is where the output of transform is written.
func (r *Runner) OutputPath(transform string) string {
	return filepath.Join(r.outputDir, "json_"+transform+".txt")
}

// TransformPayloads applies transform to each payload. The only error is an
// unknown transform.
func (r *Runner) TransformPayloads(transform string, payloads []string) ([]string, error) {
	out := make([]string, len(payloads))
	for i, p := range payloads {
		v, err := r.registry.Apply(transform, p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Convert applies one transform to every payload of the export at exportPath.
func (r *Runner) Convert(ctx context.Context, exportPath, transform string) (Result, error) {
	if _, err := r.registry.Apply(transform, ""); err != nil {
		return Result{}, err
	}
	payloads, err := LoadExport(exportPath, r.field)
	if err != nil {
		return Result{}, err
	}
	if err := r.prepareOutputDir(); err != nil {
		return Result{}, err
	}
	r.emit(logging.Event{Type: logging.EventBatchStarted, Source: exportPath, Payloads: len(payloads)})
	res, err := r.convert(ctx, transform, payloads)
	failed := 0
	if err != nil {
		failed = 1
	}
	r.emit(logging.Event{
		Type:     logging.EventBatchCompleted,
		Source:   exportPath,
		Payloads: len(payloads),
		Metadata: map[string]any{"succeeded": 1 - failed, "failed": failed},
	})
	return res, err
}

// RunAll converts the export with every registered transform, in parallel up
// to the configured worker count. A failing transform is recorded in the
// summary and does not stop the others. Cancelling ctx stops scheduling new
// transforms and returns the context error.
func (r *Runner) RunAll(ctx context.Context, exportPath string) (Summary, error) {
	payloads, err := LoadExport(exportPath, r.field)
	if err != nil {
		return Summary{}, err
	}
	if err := r.prepareOutputDir(); err != nil {
		return Summary{}, err
	}

	names := r.registry.List()
	summary := Summary{Source: exportPath, Payloads: len(payloads)}
	r.emit(logging.Event{
		Type:     logging.EventBatchStarted,
		Source:   exportPath,
		Payloads: len(payloads),
		Metadata: map[string]any{"transforms": len(names), "workers": r.workers},
	})
	r.logger.Info("Running all transforms", "transforms", len(names), "payloads", len(payloads), "workers", r.workers)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, name := range names {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.convert(gctx, name, payloads)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed = append(summary.Failed, Failure{Transform: name, Err: err})
				return nil
			}
			summary.Succeeded = append(summary.Succeeded, res)
			return nil
		})
	}
	waitErr := g.Wait()

	sort.Slice(summary.Succeeded, func(i, j int) bool { return summary.Succeeded[i].Transform < summary.Succeeded[j].Transform })
	sort.Slice(summary.Failed, func(i, j int) bool { return summary.Failed[i].Transform < summary.Failed[j].Transform })

	r.emit(logging.Event{
		Type:     logging.EventBatchCompleted,
		Source:   exportPath,
		Payloads: len(payloads),
		Metadata: map[string]any{"succeeded": len(summary.Succeeded), "failed": len(summary.Failed)},
	})

	if waitErr != nil {
		return summary, waitErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Runner) convert(ctx context.Context, transform string, payloads []string) (Result, error) {
	start := time.Now()
	res, err := r.write(ctx, transform, payloads)
	elapsed := time.Since(start)

	if err != nil {
		r.metrics.ObserveRun(transform, metrics.OutcomeFailed, 0, elapsed)
		r.emit(logging.Event{
			Type:       logging.EventTransformFailed,
			Transform:  transform,
			DurationMS: elapsed.Milliseconds(),
			Error:      err.Error(),
		})
		r.logger.Warn("Transform failed", "transform", transform, "err", err)
		return Result{}, err
	}

	res.Duration = elapsed
	r.metrics.ObserveRun(transform, metrics.OutcomeOK, res.Payloads, elapsed)
	r.emit(logging.Event{
		Type:       logging.EventTransformCompleted,
		Transform:  transform,
		Payloads:   res.Payloads,
		Output:     res.Output,
		DurationMS: elapsed.Milliseconds(),
	})
	r.logger.Debug("Wrote output", "transform", transform, "path", res.Output, "payloads", res.Payloads)
	return res, nil
}

func (r *Runner) write(ctx context.Context, transform string, payloads []string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	transformed, err := r.TransformPayloads(transform, payloads)
	if err != nil {
		return Result{}, err
	}

	var sb strings.Builder
	for _, line := range transformed {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	path := r.OutputPath(transform)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", path, err)
	}
	return Result{Transform: transform, Output: path, Payloads: len(transformed)}, nil
}

func (r *Runner) prepareOutputDir() error {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", r.outputDir, err)
	}
	return nil
}

func (r *Runner) emit(event logging.Event) {
	if err := r.journal.Emit(event); err != nil {
		r.logger.Warn("Journal write failed", "err", err)
	}
}
