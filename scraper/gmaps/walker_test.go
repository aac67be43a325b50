package gmaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"maps-scraper/utils"
)

// fakeSession is a scripted Session for walker tests. Listing payloads are
// keyed by index; counts lists the visible listing count after each scroll.
type fakeSession struct {
	payloads   []string
	counts     []int
	failIdx    map[int]bool
	failSearch bool

	scrolls int
	opened  int
	closed  bool
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error { return nil }

func (f *fakeSession) Fill(ctx context.Context, selector, value string) error {
	if f.failSearch {
		return errors.New("search box gone")
	}
	return nil
}

func (f *fakeSession) Submit(ctx context.Context, selector string) error { return nil }

func (f *fakeSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if f.failIdx[f.opened] {
		return fmt.Errorf("listing %d never became visible", f.opened)
	}
	return nil
}

func (f *fakeSession) Count(ctx context.Context, selector string) (int, error) {
	idx := f.scrolls - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(f.counts) {
		idx = len(f.counts) - 1
	}
	return f.counts[idx], nil
}

func (f *fakeSession) ClickNth(ctx context.Context, selector string, index int) error {
	if index >= len(f.payloads) {
		return fmt.Errorf("no listing at index %d", index)
	}
	f.opened = index
	return nil
}

func (f *fakeSession) ScrollToBottom(ctx context.Context, selector string) error {
	f.scrolls++
	return nil
}

func (f *fakeSession) Evaluate(ctx context.Context, js string, out any) error {
	*out.(*string) = f.payloads[f.opened]
	return nil
}

func (f *fakeSession) Location(ctx context.Context) (string, error) {
	return "https://www.google.com/maps/place/x/@10.5,20.5,15z", nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func detailPayload(name, address string) string {
	b, _ := json.Marshal(rawDetail{Name: name, Address: address})
	return string(b)
}

func fastWalkerOptions() WalkerOptions {
	return WalkerOptions{
		MaxStalls: 2,
		Settle:    time.Millisecond,
		Retry:     &utils.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond, Logger: utils.NewLogger(false)},
	}
}

func newTestWalker(session Session, opts WalkerOptions, errs *utils.ErrorLog, progress ProgressFunc) *Walker {
	logger := utils.NewLogger(false)
	extractor := NewExtractor(DefaultSelectors(), nil, logger)
	return NewWalker(session, extractor, DefaultSelectors(), logger, errs, progress, opts)
}

func TestWalkerReachesTarget(t *testing.T) {
	session := &fakeSession{
		payloads: []string{
			detailPayload("Cafe A", "1 Main St"),
			detailPayload("Cafe B", "2 Main St"),
			detailPayload("Cafe C", "3 Main St"),
		},
		counts: []int{3},
	}

	var progressNames []string
	w := newTestWalker(session, fastWalkerOptions(), utils.NewErrorLog(""), func(name string, count int) {
		progressNames = append(progressNames, name)
	})

	places, status, err := w.Walk(context.Background(), "cafes in paris", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusTargetReached {
		t.Errorf("expected target reached, got %v", status)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(places))
	}
	if places[0].Name != "Cafe A" || places[1].Name != "Cafe B" {
		t.Errorf("unexpected places: %q, %q", places[0].Name, places[1].Name)
	}
	if len(progressNames) != 2 {
		t.Errorf("expected 2 progress calls, got %d", len(progressNames))
	}
	if session.closed {
		t.Error("walker must not close the session")
	}
}

func TestWalkerDeduplicatesAndExhausts(t *testing.T) {
	session := &fakeSession{
		payloads: []string{
			detailPayload("Cafe A", "1 Main St"),
			detailPayload("Cafe A", "1 Main St"),
			detailPayload("Cafe B", "2 Main St"),
		},
		counts: []int{3},
	}

	w := newTestWalker(session, fastWalkerOptions(), utils.NewErrorLog(""), nil)

	places, status, err := w.Walk(context.Background(), "cafes in paris", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusFeedExhausted {
		t.Errorf("expected feed exhausted, got %v", status)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 unique places, got %d", len(places))
	}
}

func TestWalkerSkipsFailedListing(t *testing.T) {
	session := &fakeSession{
		payloads: []string{
			detailPayload("Cafe A", "1 Main St"),
			detailPayload("Cafe B", "2 Main St"),
			detailPayload("Cafe C", "3 Main St"),
		},
		counts:  []int{3},
		failIdx: map[int]bool{1: true},
	}

	errs := utils.NewErrorLog("")
	w := newTestWalker(session, fastWalkerOptions(), errs, nil)

	places, status, err := w.Walk(context.Background(), "cafes in paris", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusFeedExhausted {
		t.Errorf("expected feed exhausted, got %v", status)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places after skip, got %d", len(places))
	}
	if len(errs.Entries()) != 1 {
		t.Errorf("expected 1 recorded error, got %d", len(errs.Entries()))
	}
}

func TestWalkerSearchFailure(t *testing.T) {
	session := &fakeSession{failSearch: true, counts: []int{0}}
	w := newTestWalker(session, fastWalkerOptions(), utils.NewErrorLog(""), nil)

	_, _, err := w.Walk(context.Background(), "cafes in paris", 5)
	if err == nil {
		t.Fatal("expected search failure to abort the walk")
	}
}

func TestWalkerPicksUpNewListingsAfterScroll(t *testing.T) {
	session := &fakeSession{
		payloads: []string{
			detailPayload("Cafe A", "1 Main St"),
			detailPayload("Cafe B", "2 Main St"),
		},
		counts: []int{1, 2},
	}

	w := newTestWalker(session, fastWalkerOptions(), utils.NewErrorLog(""), nil)

	places, status, err := w.Walk(context.Background(), "cafes in paris", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusTargetReached {
		t.Errorf("expected target reached, got %v", status)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(places))
	}
}
