package gmaps

import (
	"context"
	"fmt"
	"sync"
	"time"

	"maps-scraper/models"
	"maps-scraper/utils"
)

// Job is one category search in one location.
type Job struct {
	Category string
	Location string
}

// Query is the search string submitted to Maps for this job.
func (j Job) Query() string {
	return j.Category + " in " + j.Location
}

// ProgressFunc receives a notification for every newly collected place.
type ProgressFunc func(name string, count int)

// RunnerOptions tune how jobs are executed.
type RunnerOptions struct {
	MaxConcurrency int
	MaxStalls      int
	Settle         time.Duration
	Lang           string
	Retry          *utils.RetryConfig
}

// Runner fans a batch of jobs across browser sessions. Each job gets its own
// session; a failed job is isolated and never takes down the batch.
type Runner struct {
	factory   SessionFactory
	selectors *SelectorTable
	emails    EmailFinder
	logger    *utils.Logger
	errs      *utils.ErrorLog
	opts      RunnerOptions
}

// NewRunner creates a Runner.
func NewRunner(factory SessionFactory, selectors *SelectorTable, emails EmailFinder, logger *utils.Logger, errs *utils.ErrorLog, opts RunnerOptions) *Runner {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 1
	}
	return &Runner{
		factory:   factory,
		selectors: selectors,
		emails:    emails,
		logger:    logger,
		errs:      errs,
		opts:      opts,
	}
}

// RunJobs executes every job and returns the collected places grouped by
// location. Every job's location appears in the result set even when the job
// failed or found nothing.
func (r *Runner) RunJobs(ctx context.Context, jobs []Job, target int, progress ProgressFunc) (models.ResultSet, error) {
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no jobs to run")
	}

	results := make(models.ResultSet)
	var mu sync.Mutex

	collect := func(job Job, places []*models.Place) {
		for _, p := range places {
			p.Category = job.Category
		}
		mu.Lock()
		results[job.Location] = append(results[job.Location], places...)
		mu.Unlock()
	}

	if len(jobs) == 1 {
		collect(jobs[0], r.runJob(ctx, jobs[0], target, progress))
		return results, nil
	}

	workers := r.opts.MaxConcurrency
	if len(jobs) < workers {
		workers = len(jobs)
	}
	r.logger.Info("[runner] Running %d jobs with %d workers", len(jobs), workers)

	pool := utils.NewWorkerPool(workers)
	for _, job := range jobs {
		job := job
		pool.Submit(func() {
			collect(job, r.runJob(ctx, job, target, progress))
		})
	}
	pool.Wait()

	return results, nil
}

// runJob runs one job in a fresh session. Failures are logged and sunk; the
// job contributes whatever it collected before failing.
func (r *Runner) runJob(ctx context.Context, job Job, target int, progress ProgressFunc) []*models.Place {
	query := job.Query()
	r.logger.Info("[runner] Starting job: %s", query)

	session, err := r.factory.NewSession(ctx)
	if err != nil {
		r.errs.Append("job %q: create session: %v", query, err)
		r.logger.Error("[runner] Could not create session for %q: %v", query, err)
		return nil
	}
	defer session.Close()

	extractor := NewExtractor(r.selectors, r.emails, r.logger)
	walker := NewWalker(session, extractor, r.selectors, r.logger, r.errs, progress, WalkerOptions{
		MaxStalls: r.opts.MaxStalls,
		Settle:    r.opts.Settle,
		Lang:      r.opts.Lang,
		Retry:     r.opts.Retry,
	})

	places, status, err := walker.Walk(ctx, query, target)
	if err != nil {
		r.errs.Append("job %q: %v", query, err)
		r.logger.Error("[runner] Job %q failed: %v", query, err)
		return places
	}

	r.logger.Info("[runner] Job %q finished with %d places (%s)", query, len(places), status)
	return places
}
