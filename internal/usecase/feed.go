package usecase

import (
	"context"
	"strings"
	"sync"

	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/internal/infrastructure/telemetry"
	"thriftmart/pkg/logger"
)

type ErrorPolicy string

const (
	// PolicyNotify logs the failure and shows a notification.
	PolicyNotify ErrorPolicy = "notify"
	// PolicyLog only logs the failure.
	PolicyLog ErrorPolicy = "log"
)

func ParseErrorPolicy(s string) ErrorPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(PolicyNotify)) {
		return PolicyNotify
	}
	return PolicyLog
}

const VariantDestructive = "destructive"

type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

var (
	ListingsErrorNotification = Notification{
		Title:       "Error",
		Description: "Failed to fetch products",
		Variant:     VariantDestructive,
	}
	CategoriesErrorNotification = Notification{
		Title:       "Error",
		Description: "Failed to fetch categories",
		Variant:     VariantDestructive,
	}
)

// FeedState is a snapshot of a Feed. Version increases with every change.
type FeedState struct {
	Filter     repository.ListingFilter
	Listings   []*entity.Listing
	Categories []*entity.Category
	Loading    bool
	Version    uint64
}

type FeedOptions struct {
	// Filter is the initial filter, applied by Activate.
	Filter              repository.ListingFilter
	ListingErrorPolicy  ErrorPolicy
	CategoryErrorPolicy ErrorPolicy
	Notifier            Notifier
	// OnChange receives a snapshot after every state change. Calls are
	// serialized and never deliver an older Version after a newer one.
	OnChange func(FeedState)
	Metrics  *telemetry.Metrics
}

// Feed keeps one session's listing and category sets in sync with the store.
// It refetches on filter change, on change notifications and on demand, and
// applies only the result of the most recently issued fetch of each kind.
type Feed struct {
	storefront Storefront
	changes    repository.ChangeFeed
	opts       FeedOptions

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	idle        *sync.Cond
	state       FeedState
	listingGen  uint64
	categoryGen uint64
	inflight    int
	closed      bool
	sub         repository.Subscription

	watchers sync.WaitGroup
	emitMu   sync.Mutex
}

func NewFeed(ctx context.Context, storefront Storefront, changes repository.ChangeFeed, opts FeedOptions) *Feed {
	if opts.ListingErrorPolicy == "" {
		opts.ListingErrorPolicy = PolicyNotify
	}
	if opts.CategoryErrorPolicy == "" {
		opts.CategoryErrorPolicy = PolicyLog
	}

	fctx, cancel := context.WithCancel(ctx)
	f := &Feed{
		storefront: storefront,
		changes:    changes,
		opts:       opts,
		ctx:        fctx,
		cancel:     cancel,
		state: FeedState{
			Filter:     opts.Filter.Normalize(),
			Listings:   []*entity.Listing{},
			Categories: []*entity.Category{},
		},
	}
	f.idle = sync.NewCond(&f.mu)
	return f
}

// Activate subscribes to listing changes and issues the initial fetches.
// A failed subscription is logged and the feed keeps working without live
// updates.
func (f *Feed) Activate() {
	if f.changes != nil {
		sub, err := f.changes.Subscribe(f.ctx, entity.TableListings)
		if err != nil {
			logger.Error("Feed: failed to subscribe to %s changes: %v", entity.TableListings, err)
		} else {
			f.mu.Lock()
			if f.closed {
				f.mu.Unlock()
				sub.Close()
				return
			}
			f.sub = sub
			f.watchers.Add(1)
			f.mu.Unlock()
			go f.watch(sub)
		}
	}

	f.fetchListings()
	f.fetchCategories()
}

func (f *Feed) watch(sub repository.Subscription) {
	defer f.watchers.Done()
	for event := range sub.Events() {
		logger.Debug("Feed: %s on %s (%s), refetching", event.Type, event.Table, event.RecordID)
		if f.opts.Metrics != nil {
			f.opts.Metrics.ChangeEvents.WithLabelValues(string(event.Type)).Inc()
		}
		f.fetchListings()
	}
}

// SetFilter replaces the filter and refetches listings and categories.
func (f *Feed) SetFilter(filter repository.ListingFilter) {
	filter = filter.Normalize()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.state.Filter = filter
	f.state.Version++
	f.mu.Unlock()

	f.fetchListings()
	f.fetchCategories()
}

// Refetch reissues the listing query for the current filter.
func (f *Feed) Refetch() {
	f.fetchListings()
}

// IncrementViews bumps a listing's view counter. Failures are logged only.
func (f *Feed) IncrementViews(ctx context.Context, id string) {
	if _, err := f.storefront.IncrementViews(ctx, id); err != nil {
		logger.Error("Feed: failed to increment views for %s: %v", id, err)
	}
}

func (f *Feed) State() FeedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Wait blocks until no fetch is in flight.
func (f *Feed) Wait() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.inflight > 0 {
		f.idle.Wait()
	}
}

// Close cancels in-flight fetches, releases the change subscription and
// waits for the feed's goroutines. It is safe to call more than once.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	sub := f.sub
	f.sub = nil
	f.mu.Unlock()

	f.cancel()
	if sub != nil {
		if err := sub.Close(); err != nil {
			logger.Warn("Feed: failed to close change subscription: %v", err)
		}
	}
	f.watchers.Wait()
	f.Wait()
}

func (f *Feed) fetchListings() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.listingGen++
	gen := f.listingGen
	filter := f.state.Filter
	f.state.Loading = true
	f.state.Version++
	f.inflight++
	f.mu.Unlock()
	f.emit()

	go func() {
		defer f.done()

		listings, err := f.storefront.FetchListings(f.ctx, filter)

		f.mu.Lock()
		if f.closed || gen != f.listingGen {
			f.mu.Unlock()
			return
		}
		f.state.Loading = false
		if err == nil {
			f.state.Listings = listings
		}
		f.state.Version++
		f.mu.Unlock()

		if err != nil {
			f.report(f.opts.ListingErrorPolicy, "products", ListingsErrorNotification, err)
		}
		f.emit()
	}()
}

func (f *Feed) fetchCategories() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.categoryGen++
	gen := f.categoryGen
	f.inflight++
	f.mu.Unlock()

	go func() {
		defer f.done()

		categories, err := f.storefront.FetchCategories(f.ctx)

		f.mu.Lock()
		if f.closed || gen != f.categoryGen {
			f.mu.Unlock()
			return
		}
		if err == nil {
			f.state.Categories = categories
			f.state.Version++
		}
		f.mu.Unlock()

		if err != nil {
			f.report(f.opts.CategoryErrorPolicy, "categories", CategoriesErrorNotification, err)
			return
		}
		f.emit()
	}()
}

func (f *Feed) done() {
	f.mu.Lock()
	f.inflight--
	if f.inflight == 0 {
		f.idle.Broadcast()
	}
	f.mu.Unlock()
}

func (f *Feed) report(policy ErrorPolicy, what string, n Notification, err error) {
	logger.Error("Feed: error fetching %s: %v", what, err)
	if policy == PolicyNotify && f.opts.Notifier != nil {
		f.opts.Notifier.Notify(n)
	}
}

// emit takes the snapshot while holding emitMu so observers see versions in
// order.
func (f *Feed) emit() {
	if f.opts.OnChange == nil {
		return
	}
	f.emitMu.Lock()
	defer f.emitMu.Unlock()
	f.opts.OnChange(f.State())
}

func (f *Feed) snapshotLocked() FeedState {
	s := f.state
	s.Listings = make([]*entity.Listing, len(f.state.Listings))
	copy(s.Listings, f.state.Listings)
	s.Categories = make([]*entity.Category, len(f.state.Categories))
	copy(s.Categories, f.state.Categories)
	return s
}
