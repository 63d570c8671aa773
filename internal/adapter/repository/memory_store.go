package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/pkg/errors"
)

// MemoryStore keeps listings and categories in process. It backs local
// development and tests and publishes change events like the real backends.
type MemoryStore struct {
	mu         sync.RWMutex
	listings   map[string]*entity.Listing
	categories map[string]*entity.Category
	feed       *memoryChangeFeed
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings:   make(map[string]*entity.Listing),
		categories: make(map[string]*entity.Category),
		feed:       newMemoryChangeFeed(),
	}
}

type memoryListingRepository struct {
	store *MemoryStore
}

func NewMemoryListingRepository(store *MemoryStore) repository.ListingRepository {
	return &memoryListingRepository{store: store}
}

func (r *memoryListingRepository) List(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Internal("Failed to list listings", err)
	}
	filter = filter.Normalize()

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	listings := make([]*entity.Listing, 0, len(r.store.listings))
	for _, l := range r.store.listings {
		if !l.IsAvailable {
			continue
		}
		if filter.CategoryID != "" && l.CategoryID != filter.CategoryID {
			continue
		}
		if !l.MatchesSearch(filter.Search) {
			continue
		}
		listings = append(listings, r.store.withCategory(l))
	}

	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].ID > listings[j].ID
		}
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})

	return listings, nil
}

func (r *memoryListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	l, ok := r.store.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return r.store.withCategory(l), nil
}

func (r *memoryListingRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	r.store.mu.Lock()
	l, ok := r.store.listings[id]
	if !ok {
		r.store.mu.Unlock()
		return 0, errors.NotFound("Listing", nil)
	}
	l.ViewsCount++
	views := l.ViewsCount
	r.store.mu.Unlock()

	r.store.feed.publish(entity.TableListings, entity.ChangeUpdate, id)
	return views, nil
}

func (r *memoryListingRepository) SetViews(ctx context.Context, id string, views int64) error {
	r.store.mu.Lock()
	l, ok := r.store.listings[id]
	if !ok {
		r.store.mu.Unlock()
		return errors.NotFound("Listing", nil)
	}
	l.ViewsCount = views
	r.store.mu.Unlock()

	r.store.feed.publish(entity.TableListings, entity.ChangeUpdate, id)
	return nil
}

func (r *memoryListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now().UTC()
	}

	r.store.mu.Lock()
	if _, exists := r.store.listings[listing.ID]; exists {
		r.store.mu.Unlock()
		return errors.Conflict("Listing already exists", nil)
	}
	r.store.listings[listing.ID] = listing.Clone()
	r.store.mu.Unlock()

	r.store.feed.publish(entity.TableListings, entity.ChangeInsert, listing.ID)
	return nil
}

func (r *memoryListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	r.store.mu.Lock()
	if _, ok := r.store.listings[listing.ID]; !ok {
		r.store.mu.Unlock()
		return errors.NotFound("Listing", nil)
	}
	r.store.listings[listing.ID] = listing.Clone()
	r.store.mu.Unlock()

	r.store.feed.publish(entity.TableListings, entity.ChangeUpdate, listing.ID)
	return nil
}

func (r *memoryListingRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	if _, ok := r.store.listings[id]; !ok {
		r.store.mu.Unlock()
		return errors.NotFound("Listing", nil)
	}
	delete(r.store.listings, id)
	r.store.mu.Unlock()

	r.store.feed.publish(entity.TableListings, entity.ChangeDelete, id)
	return nil
}

// withCategory returns a copy of l with the category name embedded. Callers
// hold the store lock.
func (s *MemoryStore) withCategory(l *entity.Listing) *entity.Listing {
	c := l.Clone()
	c.Category = nil
	if cat, ok := s.categories[l.CategoryID]; ok {
		c.Category = &entity.CategoryRef{Name: cat.Name}
	}
	return c
}

type memoryCategoryRepository struct {
	store *MemoryStore
}

func NewMemoryCategoryRepository(store *MemoryStore) repository.CategoryRepository {
	return &memoryCategoryRepository{store: store}
}

func (r *memoryCategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Internal("Failed to list categories", err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	categories := make([]*entity.Category, 0, len(r.store.categories))
	for _, c := range r.store.categories {
		cat := *c
		categories = append(categories, &cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (r *memoryCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cat := *category
	r.store.categories[category.ID] = &cat
	return nil
}

// NewMemoryChangeFeed exposes the store's change notifications.
func NewMemoryChangeFeed(store *MemoryStore) *MemoryChangeFeed {
	return &MemoryChangeFeed{feed: store.feed}
}

type MemoryChangeFeed struct {
	feed *memoryChangeFeed
}

func (f *MemoryChangeFeed) Subscribe(ctx context.Context, table string) (repository.Subscription, error) {
	return f.feed.subscribe(ctx, table), nil
}

// Subscribers reports the number of open subscriptions.
func (f *MemoryChangeFeed) Subscribers() int {
	return f.feed.count()
}
