package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
	"github.com/custodia-labs/geocat/internal/core/ports/driving"
	"github.com/custodia-labs/geocat/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.Pipeline = (*PipelineService)(nil)

// Pipeline stages reported by Status.
const (
	StageHarvest = "harvest"
	StageExtract = "extract"
	StagePublish = "publish"
)

// ErrRunInProgress indicates a second run was started in the same process.
var ErrRunInProgress = fmt.Errorf("%w: a pipeline run is already in progress", domain.ErrPublishConflict)

// PipelineService coordinates harvest, extraction and publishing.
type PipelineService struct {
	harvester driven.Harvester
	staging   driven.StagingStore
	extractor driven.Extractor
	publisher driven.CatalogPublisher
	workers   int

	// run serialises pipeline runs within the process.
	run sync.Mutex

	mu     sync.RWMutex
	status driving.RunStatus
}

// NewPipelineService creates a pipeline. The harvester may be nil when only
// Rebuild and Rollback are used.
func NewPipelineService(
	harvester driven.Harvester,
	staging driven.StagingStore,
	extractor driven.Extractor,
	publisher driven.CatalogPublisher,
	workers int,
) *PipelineService {
	if workers <= 0 {
		workers = 1
	}
	return &PipelineService{
		harvester: harvester,
		staging:   staging,
		extractor: extractor,
		publisher: publisher,
		workers:   workers,
	}
}

// Harvest runs a full harvest and publishes a catalog built from it.
// The run's staged documents are committed only after the catalog is published.
func (p *PipelineService) Harvest(ctx context.Context) (*driving.RunReport, error) {
	if p.harvester == nil {
		return nil, fmt.Errorf("%w: no harvester configured", domain.ErrInvalidInput)
	}
	if !p.run.TryLock() {
		return nil, ErrRunInProgress
	}
	defer p.run.Unlock()
	defer p.setStage("")

	start := time.Now()
	logger.Section("Harvest")
	logger.Info("Harvesting %s", p.harvester.Endpoint())

	if err := p.harvester.Validate(ctx); err != nil {
		return nil, fmt.Errorf("check %s: %w", p.harvester.Endpoint(), err)
	}

	// 1. Open a staging run
	run, err := p.staging.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin staging run: %w", err)
	}
	report := &driving.RunReport{RunID: run.ID()}

	discard := func(cause error) (*driving.RunReport, error) {
		// The caller's context may already be cancelled.
		if err := run.Discard(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Discarding staging run %s: %v", run.ID(), err)
		}
		return nil, cause
	}

	// 2. Stage every harvested document
	p.setStage(StageHarvest)
	harvested, err := p.stage(ctx, run)
	if err != nil {
		return discard(err)
	}
	report.Harvested = harvested
	logger.Info("Harvested %d documents", harvested)

	// 3. Extract and publish from this run's documents
	if err := p.buildAndPublish(ctx, run, report); err != nil {
		return discard(err)
	}

	// 4. Promote the run
	if err := run.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit staging run: %w", err)
	}

	report.Duration = time.Since(start)
	logger.Info("Harvest complete: %d harvested, %d published, %d dropped in %s",
		report.Harvested, report.Published, report.Dropped, report.Duration.Round(time.Millisecond))
	return report, nil
}

// Rebuild builds and publishes a catalog from the committed staging area.
func (p *PipelineService) Rebuild(ctx context.Context) (*driving.RunReport, error) {
	if !p.run.TryLock() {
		return nil, ErrRunInProgress
	}
	defer p.run.Unlock()
	defer p.setStage("")

	start := time.Now()
	logger.Section("Rebuild")

	set, err := p.staging.Committed(ctx)
	if err != nil {
		return nil, fmt.Errorf("open staged documents: %w", err)
	}

	report := &driving.RunReport{}
	if err := p.buildAndPublish(ctx, set, report); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	logger.Info("Rebuild complete: %d published, %d dropped in %s",
		report.Published, report.Dropped, report.Duration.Round(time.Millisecond))
	return report, nil
}

// Rollback restores the previous catalog generation.
func (p *PipelineService) Rollback(ctx context.Context) error {
	if !p.run.TryLock() {
		return ErrRunInProgress
	}
	defer p.run.Unlock()

	return p.publisher.Rollback(ctx)
}

// Status returns a snapshot of the current run.
func (p *PipelineService) Status() driving.RunStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// stage drains the harvester into the run. The harvest is cancelled if a
// document cannot be staged.
func (p *PipelineService) stage(ctx context.Context, run driven.StagingRun) (int, error) {
	hctx, cancel := context.WithCancel(ctx)
	defer cancel()

	docsCh, errsCh := p.harvester.Harvest(hctx)

	var (
		count    int
		stageErr error
	)
	for doc := range docsCh {
		if stageErr != nil {
			continue // drain until the harvester stops
		}
		if err := run.Put(hctx, doc); err != nil {
			stageErr = fmt.Errorf("stage %s: %w", doc.UUID, err)
			cancel()
			continue
		}
		count++
		p.addProcessed(1)
	}

	harvestErr := <-errsCh
	if stageErr != nil {
		return count, stageErr
	}
	if harvestErr != nil {
		return count, harvestErr
	}
	if err := ctx.Err(); err != nil {
		return count, fmt.Errorf("%w: %w", domain.ErrHarvestAborted, err)
	}
	return count, nil
}

func (p *PipelineService) buildAndPublish(ctx context.Context, set driven.StagedSet, report *driving.RunReport) error {
	// 1. Extract in parallel
	p.setStage(StageExtract)
	records, dropped, err := p.extract(ctx, set)
	if err != nil {
		return err
	}
	report.Extracted = len(records)
	report.Dropped = dropped
	if len(records) == 0 {
		logger.Warn("No records extracted; publishing an empty catalog")
	}

	// 2. Fill a shadow catalog
	p.setStage(StagePublish)
	build, err := p.publisher.NewBuild(ctx)
	if err != nil {
		return fmt.Errorf("create catalog build: %w", err)
	}
	for _, rec := range records {
		if err := build.Insert(ctx, rec); err != nil {
			if abortErr := build.Abort(); abortErr != nil {
				logger.Warn("Aborting catalog build: %v", abortErr)
			}
			return fmt.Errorf("ingest: %w", err)
		}
	}

	// 3. Swap it in
	if err := p.publisher.Publish(ctx, build); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	report.Published = build.Count()
	report.CatalogPath = p.publisher.PublishedPath()
	return nil
}

// extract normalises every staged document. Malformed records are dropped
// and counted; any other failure aborts. Records are returned sorted by UUID
// with duplicates removed so builds are deterministic.
func (p *PipelineService) extract(ctx context.Context, set driven.StagedSet) ([]*domain.Record, int, error) {
	uuids, err := set.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list staged documents: %w", err)
	}
	logger.Info("Extracting %d documents with %d workers", len(uuids), p.workers)

	var (
		records  = make([]*domain.Record, len(uuids))
		dropped  atomic.Int64
		done     atomic.Int64
		progress = newProgress("Extracted", len(uuids))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, id := range uuids {
		g.Go(func() error {
			raw, err := set.Get(gctx, id)
			if err != nil {
				return fmt.Errorf("read staged %s: %w", id, err)
			}
			rec, err := p.extractor.Extract(raw)
			switch {
			case errors.Is(err, domain.ErrMalformedRecord):
				logger.Warn("Dropping %s: %v", id, err)
				dropped.Add(1)
				p.addErrors(1)
			case err != nil:
				return fmt.Errorf("extract %s: %w", id, err)
			default:
				records[i] = rec
			}
			p.addProcessed(1)
			progress.report(int(done.Add(1)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	return dedupe(records), int(dropped.Load()), nil
}

// dedupe drops nil entries, sorts by UUID and keeps the first record of each UUID.
func dedupe(records []*domain.Record) []*domain.Record {
	out := make([]*domain.Record, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UUID < out[j].UUID })

	unique := out[:0]
	for i, r := range out {
		if i > 0 && r.UUID == out[i-1].UUID {
			logger.Warn("Duplicate record %s; keeping the first", r.UUID)
			continue
		}
		unique = append(unique, r)
	}
	return unique
}

func (p *PipelineService) setStage(stage string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = driving.RunStatus{Running: stage != "", Stage: stage}
}

func (p *PipelineService) addProcessed(n int) {
	p.mu.Lock()
	p.status.DocumentsProcessed += n
	p.mu.Unlock()
}

func (p *PipelineService) addErrors(n int) {
	p.mu.Lock()
	p.status.ErrorCount += n
	p.mu.Unlock()
}

// progress logs at every 10% step of a known total.
type progress struct {
	label string
	total int
	mu    sync.Mutex
	next  int
}

func newProgress(label string, total int) *progress {
	return &progress{label: label, total: total, next: 10}
}

func (pr *progress) report(done int) {
	if pr.total <= 0 {
		return
	}
	pct := done * 100 / pr.total

	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pct < pr.next {
		return
	}
	for pr.next <= pct {
		pr.next += 10
	}
	logger.Info("%s %d of %d (%d%%)", pr.label, done, pr.total, pct)
}
