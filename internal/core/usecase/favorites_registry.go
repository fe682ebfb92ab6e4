package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
	"github.com/Maureenhddi/sergic-app/pkg/workerpool"
)

// CompareMaxItems - size limit of the compare list.
const CompareMaxItems = 3

const defaultEnrichmentTimeout = 15 * time.Second

// listKind selects one of the two persisted lists.
type listKind string

const (
	favoritesList listKind = domain.KeyFavorites
	compareList   listKind = domain.KeyCompare
)

// FavoritesRegistry owns the favorites and compare lists. Both are persisted as bare JSON arrays,
// the favorites key is also read by the offline cache.
//
// Adding a listing without a title is a two-phase write: the listing is stored right away, then a
// background job fetches the detail and merges title and room count into the entry with the same
// reference, if it is still there.
type FavoritesRegistry struct {
	store   port.KeyValueStorePort
	details port.DetailFetcherPort
	pool    *workerpool.Pool

	enrichTimeout time.Duration

	mu        sync.RWMutex
	favorites []domain.Listing
	compare   []domain.Listing
}

// NewFavoritesRegistry loads both lists from the store. Unreadable lists start empty.
func NewFavoritesRegistry(
	ctx context.Context,
	store port.KeyValueStorePort,
	details port.DetailFetcherPort,
	pool *workerpool.Pool,
) *FavoritesRegistry {
	if pool == nil {
		pool = workerpool.New(1, 0)
	}
	r := &FavoritesRegistry{
		store:         store,
		details:       details,
		pool:          pool,
		enrichTimeout: defaultEnrichmentTimeout,
	}
	r.favorites = readListingList(ctx, store, domain.KeyFavorites)
	r.compare = readListingList(ctx, store, domain.KeyCompare)

	contextkeys.LoggerFromContext(ctx).Info("Favorites registry loaded.", port.Fields{
		"component": "FavoritesRegistry",
		"favorites": len(r.favorites),
		"compare":   len(r.compare),
	})
	return r
}

// --- favorites ---

func (r *FavoritesRegistry) Favorites() []domain.Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneListings(r.favorites)
}

func (r *FavoritesRegistry) FavoritesCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.favorites)
}

func (r *FavoritesRegistry) IsFavorite(reference string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return indexOf(r.favorites, reference) >= 0
}

// ToggleFavorite removes the listing if present, adds it otherwise. Returns true when added.
func (r *FavoritesRegistry) ToggleFavorite(ctx context.Context, listing domain.Listing) bool {
	r.mu.Lock()
	if i := indexOf(r.favorites, listing.Reference); i >= 0 {
		r.favorites = removeAt(r.favorites, i)
		r.persistLocked(ctx, favoritesList)
		r.mu.Unlock()
		return false
	}
	r.favorites = append(cloneListings(r.favorites), listing)
	r.persistLocked(ctx, favoritesList)
	r.mu.Unlock()

	r.scheduleEnrichment(ctx, listing, favoritesList)
	return true
}

func (r *FavoritesRegistry) AddFavorite(ctx context.Context, listing domain.Listing) {
	r.mu.Lock()
	if indexOf(r.favorites, listing.Reference) >= 0 {
		r.mu.Unlock()
		return
	}
	r.favorites = append(cloneListings(r.favorites), listing)
	r.persistLocked(ctx, favoritesList)
	r.mu.Unlock()

	r.scheduleEnrichment(ctx, listing, favoritesList)
}

func (r *FavoritesRegistry) RemoveFavorite(ctx context.Context, reference string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := indexOf(r.favorites, reference); i >= 0 {
		r.favorites = removeAt(r.favorites, i)
	}
	r.persistLocked(ctx, favoritesList)
}

func (r *FavoritesRegistry) ClearFavorites(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.favorites = []domain.Listing{}
	r.persistLocked(ctx, favoritesList)
}

// --- compare ---

func (r *FavoritesRegistry) CompareList() []domain.Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneListings(r.compare)
}

func (r *FavoritesRegistry) CompareCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.compare)
}

func (r *FavoritesRegistry) CanAddToCompare() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.compare) < CompareMaxItems
}

func (r *FavoritesRegistry) IsInCompare(reference string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return indexOf(r.compare, reference) >= 0
}

// ToggleCompare removes the listing if present, otherwise adds it when there is room.
// Returns true only when the listing was added.
func (r *FavoritesRegistry) ToggleCompare(ctx context.Context, listing domain.Listing) bool {
	r.mu.Lock()
	if i := indexOf(r.compare, listing.Reference); i >= 0 {
		r.compare = removeAt(r.compare, i)
		r.persistLocked(ctx, compareList)
		r.mu.Unlock()
		return false
	}
	if len(r.compare) >= CompareMaxItems {
		r.mu.Unlock()
		return false
	}
	r.compare = append(cloneListings(r.compare), listing)
	r.persistLocked(ctx, compareList)
	r.mu.Unlock()

	r.scheduleEnrichment(ctx, listing, compareList)
	return true
}

// AddToCompare returns false when the list is full or already holds the listing.
func (r *FavoritesRegistry) AddToCompare(ctx context.Context, listing domain.Listing) bool {
	r.mu.Lock()
	if len(r.compare) >= CompareMaxItems || indexOf(r.compare, listing.Reference) >= 0 {
		r.mu.Unlock()
		return false
	}
	r.compare = append(cloneListings(r.compare), listing)
	r.persistLocked(ctx, compareList)
	r.mu.Unlock()

	r.scheduleEnrichment(ctx, listing, compareList)
	return true
}

func (r *FavoritesRegistry) RemoveFromCompare(ctx context.Context, reference string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := indexOf(r.compare, reference); i >= 0 {
		r.compare = removeAt(r.compare, i)
	}
	r.persistLocked(ctx, compareList)
}

func (r *FavoritesRegistry) ClearCompare(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compare = []domain.Listing{}
	r.persistLocked(ctx, compareList)
}

// Wait blocks until pending enrichment jobs are done.
func (r *FavoritesRegistry) Wait() {
	r.pool.Wait()
}

// Close stops scheduling enrichment and waits for running jobs.
func (r *FavoritesRegistry) Close() {
	r.pool.Close()
}

// --- enrichment ---

type enrichment struct {
	title    *string
	rooms    *int
	setRooms bool
}

func (r *FavoritesRegistry) scheduleEnrichment(ctx context.Context, listing domain.Listing, kind listKind) {
	if listing.Title != "" || r.details == nil {
		return
	}
	jobCtx := context.WithoutCancel(ctx)
	if !r.pool.Submit(func() { r.enrich(jobCtx, listing, kind) }) {
		contextkeys.LoggerFromContext(ctx).Warn("Enrichment pool closed, listing left as is.", port.Fields{
			"component": "FavoritesRegistry",
			"reference": listing.Reference,
		})
	}
}

func (r *FavoritesRegistry) enrich(ctx context.Context, original domain.Listing, kind listKind) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "FavoritesRegistry",
		"method":    "enrich",
		"reference": original.Reference,
		"list":      string(kind),
	})

	fetchCtx, cancel := context.WithTimeout(ctx, r.enrichTimeout)
	defer cancel()

	detail, err := r.details.GetBySlug(fetchCtx, original.Slug)
	if err != nil {
		logger.Warn("Failed to enrich listing, trying label fallback.", port.Fields{"error": err.Error()})
		if rooms, ok := domain.RoomsFromLabel(original.LabelType); ok {
			r.applyEnrichment(ctx, original.Reference, kind, enrichment{rooms: &rooms, setRooms: true})
		}
		return
	}

	rooms := original.NumberOfBeds
	if rooms == nil {
		if n, ok := domain.RoomsFromLabel(original.LabelType); ok {
			rooms = &n
		} else {
			rooms = detail.NumberOfBeds
		}
	}
	title := detail.Title
	r.applyEnrichment(ctx, original.Reference, kind, enrichment{title: &title, rooms: rooms, setRooms: true})
	logger.Debug("Listing enriched.", nil)
}

// applyEnrichment merges into the current entry with the given reference.
// Entries removed meanwhile, or already carrying a title, are left untouched.
func (r *FavoritesRegistry) applyEnrichment(ctx context.Context, reference string, kind listKind, e enrichment) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.listLocked(kind)
	i := indexOf(list, reference)
	if i < 0 || list[i].Title != "" {
		return
	}

	updated := cloneListings(list)
	if e.title != nil {
		updated[i].Title = *e.title
	}
	if e.setRooms {
		updated[i].NumberOfBeds = e.rooms
	}
	r.setListLocked(kind, updated)
	r.persistLocked(ctx, kind)
}

func (r *FavoritesRegistry) listLocked(kind listKind) []domain.Listing {
	if kind == compareList {
		return r.compare
	}
	return r.favorites
}

func (r *FavoritesRegistry) setListLocked(kind listKind, list []domain.Listing) {
	if kind == compareList {
		r.compare = list
		return
	}
	r.favorites = list
}

// persistLocked writes the list; a failed write is logged and the in-memory state is kept.
func (r *FavoritesRegistry) persistLocked(ctx context.Context, kind listKind) {
	list := r.listLocked(kind)
	if list == nil {
		list = []domain.Listing{}
	}
	if err := saveJSON(ctx, r.store, string(kind), list); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to persist list", err, port.Fields{
			"component": "FavoritesRegistry",
			"list":      string(kind),
		})
	}
}

func indexOf(list []domain.Listing, reference string) int {
	for i, l := range list {
		if l.Reference == reference {
			return i
		}
	}
	return -1
}

func removeAt(list []domain.Listing, i int) []domain.Listing {
	out := make([]domain.Listing, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

func cloneListings(list []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, len(list))
	copy(out, list)
	return out
}
