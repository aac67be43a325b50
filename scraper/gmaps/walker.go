package gmaps

import (
	"context"
	"fmt"
	"time"

	"maps-scraper/models"
	"maps-scraper/utils"
)

// WalkStatus reports how a walk ended when no error occurred.
type WalkStatus int

const (
	// StatusTargetReached means the requested number of unique places was
	// collected.
	StatusTargetReached WalkStatus = iota
	// StatusFeedExhausted means the feed stopped yielding new places before
	// the target was met.
	StatusFeedExhausted
)

func (s WalkStatus) String() string {
	switch s {
	case StatusTargetReached:
		return "target reached"
	case StatusFeedExhausted:
		return "feed exhausted"
	default:
		return "unknown"
	}
}

const (
	searchBoxTimeout   = 20 * time.Second
	firstResultTimeout = 20 * time.Second
	detailTimeout      = 5 * time.Second
)

// Walker drives one search query through a session: submit the query, scroll
// the results feed, open each listing, and collect unique places until the
// target count is met or the feed runs dry.
type Walker struct {
	session   Session
	extractor *Extractor
	selectors *SelectorTable
	logger    *utils.Logger
	errs      *utils.ErrorLog
	progress  ProgressFunc

	maxStalls int
	settle    time.Duration
	lang      string
	retry     *utils.RetryConfig
}

// WalkerOptions tune a Walker. Zero values fall back to defaults.
type WalkerOptions struct {
	MaxStalls int
	Settle    time.Duration
	Lang      string
	Retry     *utils.RetryConfig
}

// NewWalker constructs a Walker over an existing session. The Walker never
// closes the session; its owner does.
func NewWalker(session Session, extractor *Extractor, selectors *SelectorTable, logger *utils.Logger, errs *utils.ErrorLog, progress ProgressFunc, opts WalkerOptions) *Walker {
	if opts.MaxStalls <= 0 {
		opts.MaxStalls = 10
	}
	if opts.Settle <= 0 {
		opts.Settle = 500 * time.Millisecond
	}
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	if opts.Retry == nil {
		opts.Retry = &utils.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		}
	}
	return &Walker{
		session:   session,
		extractor: extractor,
		selectors: selectors,
		logger:    logger,
		errs:      errs,
		progress:  progress,
		maxStalls: opts.MaxStalls,
		settle:    opts.Settle,
		lang:      opts.Lang,
		retry:     opts.Retry,
	}
}

// Walk runs the query and collects up to target unique places. A failed
// search aborts the whole walk; a failed listing is logged and skipped.
func (w *Walker) Walk(ctx context.Context, query string, target int) ([]*models.Place, WalkStatus, error) {
	if err := w.search(ctx, query); err != nil {
		return nil, StatusFeedExhausted, fmt.Errorf("search %q: %w", query, err)
	}

	seen := utils.NewKeySet()
	var places []*models.Place
	processed := 0
	stalls := 0

	for len(places) < target {
		if err := ctx.Err(); err != nil {
			return places, StatusFeedExhausted, err
		}

		if err := w.session.ScrollToBottom(ctx, w.selectors.Feed); err != nil {
			w.logger.Debug("[walker] scroll failed: %v", err)
		}
		w.sleep(ctx, w.settle)

		count, err := w.session.Count(ctx, w.selectors.ListingLink)
		if err != nil {
			return places, StatusFeedExhausted, fmt.Errorf("count listings: %w", err)
		}

		before := seen.Size()
		for i := processed; i < count && len(places) < target; i++ {
			place, err := w.openAndExtract(ctx, i)
			if err != nil {
				w.errs.Append("query %q listing %d: %v", query, i, err)
				w.logger.Warn("[walker] Skipping listing %d for %q: %v", i, query, err)
				continue
			}

			key := place.Key()
			if key == "" || !seen.Add(key) {
				continue
			}
			places = append(places, place)
			if w.progress != nil {
				w.progress(place.Name, len(places))
			}
		}
		processed = count

		if seen.Size() == before {
			stalls++
			w.logger.Debug("[walker] no new places for %q (stall %d/%d)", query, stalls, w.maxStalls)
			if stalls >= w.maxStalls {
				w.logger.Info("[walker] Feed exhausted for %q after %d places", query, len(places))
				return places, StatusFeedExhausted, nil
			}
		} else {
			stalls = 0
		}
	}

	return places, StatusTargetReached, nil
}

// search navigates to Maps and submits the query, retrying transient failures.
func (w *Walker) search(ctx context.Context, query string) error {
	return w.retry.Do("search "+query, func() error {
		if err := w.session.Navigate(ctx, "https://www.google.com/maps?hl="+w.lang); err != nil {
			return fmt.Errorf("open maps: %w", err)
		}
		if err := w.session.WaitVisible(ctx, w.selectors.SearchBox, searchBoxTimeout); err != nil {
			return fmt.Errorf("wait for search box: %w", err)
		}
		if err := w.session.Fill(ctx, w.selectors.SearchBox, query); err != nil {
			return fmt.Errorf("fill search box: %w", err)
		}
		if err := w.session.Submit(ctx, w.selectors.SearchBox); err != nil {
			return fmt.Errorf("submit search: %w", err)
		}
		if err := w.session.WaitVisible(ctx, w.selectors.ListingLink, firstResultTimeout); err != nil {
			return fmt.Errorf("wait for results: %w", err)
		}
		return nil
	})
}

func (w *Walker) openAndExtract(ctx context.Context, index int) (*models.Place, error) {
	if err := w.session.ClickNth(ctx, w.selectors.ListingLink, index); err != nil {
		return nil, fmt.Errorf("open listing: %w", err)
	}
	if err := w.session.WaitVisible(ctx, w.selectors.TitleSelector(), detailTimeout); err != nil {
		return nil, fmt.Errorf("wait for detail view: %w", err)
	}
	return w.extractor.Extract(ctx, w.session)
}

func (w *Walker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
