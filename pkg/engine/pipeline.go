package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/solosevn/trainingrun/internal/store"
	"github.com/solosevn/trainingrun/pkg/ledger"
	"github.com/solosevn/trainingrun/pkg/notify"
	"github.com/solosevn/trainingrun/pkg/publish"
	"github.com/solosevn/trainingrun/pkg/source"
)

// CategorySources binds one scoring category to the providers that feed it.
type CategorySources struct {
	Category
	Sources []source.Source
}

// Pipeline runs one board end to end: load the dataset, collect from all
// sources, score, persist atomically, then archive, publish, and notify.
// Archive, publisher, and notifier are optional.
type Pipeline struct {
	engine   *Engine
	board    string
	dataFile string
	cats     []CategorySources

	archive   *store.Archive
	publisher publish.Publisher
	notifier  *notify.Manager
	logw      io.Writer
}

// NewPipeline builds the pipeline for one board. logw receives progress
// lines; pass os.Stderr for CLI runs.
func NewPipeline(cats []CategorySources, opts Options, logw io.Writer) *Pipeline {
	categories := make([]Category, len(cats))
	for i, c := range cats {
		categories[i] = c.Category
	}
	if logw == nil {
		logw = io.Discard
	}
	return &Pipeline{
		engine:    New(categories, opts),
		board:     opts.Board,
		cats:      cats,
		publisher: publish.Nop{},
		logw:      logw,
	}
}

func (p *Pipeline) WithDataFile(path string) *Pipeline { p.dataFile = path; return p }

func (p *Pipeline) WithArchive(a *store.Archive) *Pipeline { p.archive = a; return p }

func (p *Pipeline) WithPublisher(pub publish.Publisher) *Pipeline {
	if pub != nil {
		p.publisher = pub
	}
	return p
}

func (p *Pipeline) WithNotifier(m *notify.Manager) *Pipeline { p.notifier = m; return p }

// Run executes one dated run. In dry-run mode the scored report is
// returned but nothing is persisted, archived, published, or notified.
func (p *Pipeline) Run(ctx context.Context, date string, dryRun bool) (*Report, error) {
	started := time.Now().UTC()

	led, err := p.load()
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	fmt.Fprintf(p.logw, "[%s] collecting %d categories\n", p.board, len(p.cats))
	var results []source.Result
	for _, c := range p.cats {
		batch := source.Collect(ctx, c.Key, c.LowerIsBetter, c.Sources)
		for _, r := range batch {
			if r.Err != nil {
				fmt.Fprintf(p.logw, "[%s] source %s/%s unavailable: %v\n", p.board, c.Key, r.Source, r.Err)
			}
		}
		results = append(results, batch...)
	}

	report, err := p.engine.Run(led, date, results)
	if err != nil {
		p.record(ctx, started, date, report, err)
		return nil, fmt.Errorf("score: %w", err)
	}

	fmt.Fprintf(p.logw, "[%s] %s mode, %d/%d qualified, digest %.12s\n",
		p.board, report.Mode, report.Qualified, report.Total, report.Digest)

	if dryRun {
		return report, nil
	}

	if err := store.SaveLedger(p.dataFile, led); err != nil {
		p.record(ctx, started, date, report, err)
		return nil, fmt.Errorf("persist ledger: %w", err)
	}
	if err := store.VerifyLedger(p.dataFile); err != nil {
		return nil, fmt.Errorf("verify persisted ledger: %w", err)
	}

	p.record(ctx, started, date, report, nil)

	if err := p.publisher.Publish(ctx, p.commitMessage(report), []string{p.dataFile}); err != nil {
		fmt.Fprintf(p.logw, "[%s] publish failed: %v\n", p.board, err)
	}
	if p.notifier != nil {
		subject := fmt.Sprintf("%s run %s", p.board, date)
		if err := p.notifier.Broadcast(ctx, subject, report.Summary()); err != nil {
			fmt.Fprintf(p.logw, "[%s] notify failed: %v\n", p.board, err)
		}
	}

	return report, nil
}

// load reads the board's dataset. A missing file starts an empty board;
// anything else, including corruption, aborts the run.
func (p *Pipeline) load() (*ledger.Ledger, error) {
	led, err := store.LoadLedger(p.dataFile)
	if errors.Is(err, fs.ErrNotExist) {
		return &ledger.Ledger{}, nil
	}
	return led, err
}

// record archives the run outcome. Archive failures are logged, never fatal.
func (p *Pipeline) record(ctx context.Context, started time.Time, date string, report *Report, runErr error) {
	if p.archive == nil {
		return
	}

	rec := &store.RunRecord{
		Board:      p.board,
		RunDate:    date,
		Status:     "ok",
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	}
	if report != nil {
		rec.Mode = report.Mode
		rec.Qualified = report.Qualified
		rec.Total = report.Total
		rec.Digest = report.Digest
	}
	if runErr != nil {
		rec.Status = "failed"
		rec.Detail = runErr.Error()
	}

	id, err := p.archive.RecordRun(ctx, rec)
	if err != nil {
		fmt.Fprintf(p.logw, "[%s] archive run failed: %v\n", p.board, err)
		return
	}

	if report == nil {
		return
	}
	ms := make([]store.Measurement, len(report.Resolutions))
	for i, r := range report.Resolutions {
		ms[i] = store.Measurement{
			Source:       r.Source,
			Category:     r.Category,
			RawName:      r.RawName,
			ResolvedName: r.Resolved,
			Value:        r.Value,
		}
	}
	if err := p.archive.RecordMeasurements(ctx, id, ms); err != nil {
		fmt.Fprintf(p.logw, "[%s] archive measurements failed: %v\n", p.board, err)
	}
}

func (p *Pipeline) commitMessage(r *Report) string {
	return fmt.Sprintf("Update %s data for %s", p.board, r.Date)
}
