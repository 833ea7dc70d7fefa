package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/accessibility-etl/internal/domain"
	"github.com/couchcryptid/accessibility-etl/internal/observability"
)

// Extractor reads a whole survey table from the source.
type Extractor interface {
	Extract(ctx context.Context) (domain.Table, error)
}

// Transformer turns a raw survey table into a cleaned, enriched one.
type Transformer interface {
	Transform(ctx context.Context, t domain.Table) (domain.Table, Stats, error)
}

// Loader persists a transformed table.
type Loader interface {
	Load(ctx context.Context, t domain.Table) error
	Name() string
}

// Stats counts the rows each transform stage dropped or degraded.
type Stats struct {
	DuplicatesRemoved int `json:"duplicates_removed"`
	ReprojectErrors   int `json:"reproject_errors"`
	OutliersRemoved   int `json:"outliers_removed"`
	GeocodeFailures   int `json:"geocode_failures"`
}

// Report summarizes a pipeline run. It is also served by the status server
// while a run is in progress.
type Report struct {
	Stage       string    `json:"stage"`
	RowsRead    int       `json:"rows_read"`
	RowsWritten int       `json:"rows_written"`
	Stats       Stats     `json:"stats"`
	Sinks       []string  `json:"sinks"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitzero"`
}

// Run stages reported by Pipeline.Report.
const (
	StageIdle      = "idle"
	StageExtract   = "extract"
	StageTransform = "transform"
	StageLoad      = "load"
	StageDone      = "done"
	StageFailed    = "failed"
)

// Pipeline runs extract, transform and load once over a whole table.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool

	mu     sync.Mutex
	report Report
}

// New creates a Pipeline with the given stages and observability. Every
// loader receives the same transformed table, in order.
func New(e Extractor, t Transformer, logger *slog.Logger, metrics *observability.Metrics, loaders ...Loader) *Pipeline {
	sinks := make([]string, 0, len(loaders))
	for _, l := range loaders {
		sinks = append(sinks, l.Name())
	}
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
		report:      Report{Stage: StageIdle, Sinks: sinks},
	}
}

// CheckReadiness returns nil once the source has been read successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not read its source yet")
	}
	return nil
}

// Report returns a snapshot of the current or last run.
func (p *Pipeline) Report() Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := p.report
	r.Sinks = append([]string(nil), p.report.Sinks...)
	return r
}

func (p *Pipeline) update(fn func(r *Report)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.report)
}

// Run executes a single extract-transform-load pass. A failing stage aborts
// the run; the returned report reflects how far it got.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	p.logger.Info("pipeline started", "sinks", p.Report().Sinks)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.update(func(r *Report) {
		r.Stage = StageExtract
		r.StartedAt = domain.Now()
	})

	if err := p.run(ctx); err != nil {
		p.update(func(r *Report) {
			r.Stage = StageFailed
			r.FinishedAt = domain.Now()
		})
		return p.Report(), err
	}

	p.update(func(r *Report) {
		r.Stage = StageDone
		r.FinishedAt = domain.Now()
	})
	rep := p.Report()
	p.logger.Info("pipeline finished",
		"rows_read", rep.RowsRead,
		"rows_written", rep.RowsWritten,
		"duplicates_removed", rep.Stats.DuplicatesRemoved,
		"outliers_removed", rep.Stats.OutliersRemoved,
		"reproject_errors", rep.Stats.ReprojectErrors,
		"geocode_failures", rep.Stats.GeocodeFailures,
		"duration", rep.FinishedAt.Sub(rep.StartedAt),
	)
	return rep, nil
}

func (p *Pipeline) run(ctx context.Context) error {
	table, err := p.extractor.Extract(ctx)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	p.ready.Store(true)
	p.metrics.RowsRead.Add(float64(len(table.Places)))
	p.update(func(r *Report) {
		r.Stage = StageTransform
		r.RowsRead = len(table.Places)
	})

	out, stats, err := p.transformer.Transform(ctx, table)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	p.update(func(r *Report) {
		r.Stage = StageLoad
		r.Stats = stats
	})

	start := time.Now()
	for _, l := range p.loaders {
		if err := l.Load(ctx, out); err != nil {
			return fmt.Errorf("load %s: %w", l.Name(), err)
		}
		p.metrics.RowsWritten.Add(float64(len(out.Places)))
		p.logger.Info("table loaded", "sink", l.Name(), "rows", len(out.Places))
	}
	p.metrics.StageDuration.WithLabelValues(StageLoad).Observe(time.Since(start).Seconds())

	p.update(func(r *Report) {
		r.RowsWritten = len(out.Places)
	})
	return nil
}
