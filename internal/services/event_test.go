package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmarket/internal/domain"
)

// testLogger is a no-op logger so tests don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testTimeout = 2 * time.Second

type storedEvent struct {
	event   domain.Event
	tickets []*domain.Ticket
}

// fakeEventRepo is an in-memory EventRepository. A single mutex stands in for
// the transaction boundary: Update holds it across the delete-and-recreate of
// tickets, so readers model the same isolation the real repository gives.
type fakeEventRepo struct {
	mu     sync.Mutex
	bySlug map[string]*storedEvent
	nextID int

	createErr   error
	updateErr   error
	updateDelay time.Duration // sleep between ticket delete and recreate

	upcoming       []*domain.EventWithRelations
	lastUpcoming   int
	publicResults  []*domain.EventWithRelations
	lastFilter     domain.ListingFilter
	lastPublicSort domain.SortSpec
	lastSorts      []domain.SortSpec
	lastParams     domain.PaginationParams
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		bySlug: make(map[string]*storedEvent),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event, tickets []*domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.bySlug[e.Slug]; ok {
		return domain.ErrDuplicateSlug
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	for i, t := range tickets {
		t.ID = fmt.Sprintf("%s-t-%d", e.ID, i)
		t.EventID = e.ID
	}
	f.bySlug[e.Slug] = &storedEvent{event: *e, tickets: tickets}
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event, tickets []*domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	stored, ok := f.bySlug[e.Slug]
	if !ok {
		return domain.ErrNotFound
	}
	stored.tickets = nil
	if f.updateDelay > 0 {
		time.Sleep(f.updateDelay)
	}
	for i, t := range tickets {
		t.ID = fmt.Sprintf("%s-t-%d", e.ID, i)
		t.EventID = e.ID
	}
	stored.event = *e
	stored.tickets = tickets
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, slug, hostID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bySlug[slug]
	if !ok || stored.event.HostID != hostID {
		return domain.ErrNotFound
	}
	delete(f.bySlug, slug)
	return nil
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.EventWithRelations, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bySlug[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e := stored.event
	return &domain.EventWithRelations{
		Event:   &e,
		Tickets: append([]*domain.Ticket(nil), stored.tickets...),
	}, nil
}

func (f *fakeEventRepo) ListByHost(ctx context.Context, hostID string, params domain.PaginationParams, sorts []domain.SortSpec) ([]*domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastParams = params
	f.lastSorts = sorts

	var owned []*domain.Event
	for _, stored := range f.bySlug {
		if stored.event.HostID == hostID {
			e := stored.event
			owned = append(owned, &e)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })

	total := len(owned)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return owned[start:end], total, nil
}

func (f *fakeEventRepo) ListPublic(ctx context.Context, filter domain.ListingFilter, sortSpec domain.SortSpec) ([]*domain.EventWithRelations, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	f.lastPublicSort = sortSpec
	return f.publicResults, nil
}

func (f *fakeEventRepo) ListUpcomingPublished(ctx context.Context, limit int) ([]*domain.EventWithRelations, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpcoming = limit
	return f.upcoming, nil
}

// fakeCategoryRepo knows a fixed set of categories.
type fakeCategoryRepo struct {
	categories map[string]*domain.Category
}

func newFakeCategoryRepo(ids ...string) *fakeCategoryRepo {
	f := &fakeCategoryRepo{categories: make(map[string]*domain.Category)}
	for i, id := range ids {
		f.categories[id] = &domain.Category{ID: id, Name: id, Slug: id, Order: i + 1}
	}
	return f
}

func (f *fakeCategoryRepo) ListAll(ctx context.Context) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range f.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if c, ok := f.categories[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

// fakeImageStore records deletions; URLs in failWith return that error.
type fakeImageStore struct {
	mu       sync.Mutex
	deleted  []string
	failWith map[string]error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{failWith: make(map[string]error)}
}

func (f *fakeImageStore) Delete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	if err, ok := f.failWith[url]; ok {
		return err
	}
	return nil
}

func (f *fakeImageStore) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

func validSubmission() domain.EventSubmission {
	return domain.EventSubmission{
		Title:       "Taylor Swift - The Eras Tour",
		Date:        "2026-09-18",
		Time:        "19:30",
		Description: "A once in a lifetime stadium show.",
		Venue:       "Wembley Stadium",
		CategoryID:  "cat-music",
		Status:      "Published",
		Tickets: []domain.TicketSubmission{
			{Type: "general", Price: "89.50"},
			{Type: "vip", Price: "450"},
		},
		Images:   []string{"https://img.example.com/eras.jpg"},
		Capacity: "9000",
	}
}

func newTestEventService(repo *fakeEventRepo, cats *fakeCategoryRepo, store *fakeImageStore) domain.EventService {
	return NewEventService(repo, cats, store, testLogger, testTimeout)
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("success persists event and full ticket set", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := newTestEventService(repo, newFakeCategoryRepo("cat-music"), newFakeImageStore())

		event, err := svc.CreateEvent(ctx, "user-1", validSubmission())
		require.NoError(t, err)
		assert.Equal(t, "taylor-swift-the-eras-tour", event.Slug)
		assert.Equal(t, "taylor swift - the eras tour", event.Title)
		assert.Equal(t, time.Date(2026, 9, 18, 19, 30, 0, 0, time.UTC), event.Schedule)

		got, err := repo.GetBySlug(ctx, event.Slug)
		require.NoError(t, err)
		assert.Len(t, got.Tickets, 2)
		assert.Equal(t, "user-1", got.Event.HostID)
	})

	t.Run("missing host", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := newTestEventService(repo, newFakeCategoryRepo("cat-music"), newFakeImageStore())

		_, err := svc.CreateEvent(ctx, "", validSubmission())
		require.Error(t, err)
		assert.Empty(t, repo.bySlug)
	})

	t.Run("invalid payload returns field violations and no side effects", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := newTestEventService(repo, newFakeCategoryRepo("cat-music"), newFakeImageStore())

		sub := validSubmission()
		sub.Tickets[0].Price = "1000000"
		_, err := svc.CreateEvent(ctx, "user-1", sub)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.NotEmpty(t, verr.Fields)
		assert.Empty(t, repo.bySlug)
	})

	t.Run("all-symbol title is rejected before persistence", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := newTestEventService(repo, newFakeCategoryRepo("cat-music"), newFakeImageStore())

		sub := validSubmission()
		sub.Title = "!!!!!"
		_, err := svc.CreateEvent(ctx, "user-1", sub)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, repo.bySlug)
	})

	t.Run("unknown category", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := newTestEventService(repo, newFakeCategoryRepo("cat-music"), newFakeImageStore())

		sub := validSubmission()
		sub.CategoryID = "cat-unknown"
		_, err := svc.CreateEvent(ctx, "user-1", sub)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("duplicate slug surfaces as such", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := newTestEventService(repo, newFakeCategoryRepo("cat-music"), newFakeImageStore())

		_, err := svc.CreateEvent(ctx, "user-1", validSubmission())
		require.NoError(t, err)
		_, err = svc.CreateEvent(ctx, "user-2", validSubmission())
		require.ErrorIs(t, err, domain.ErrDuplicateSlug)
	})

	t.Run("persistence failure is wrapped", func(t *testing.T) {
		repo := newFakeEventRepo()
		repo.createErr = errors.New("connection reset")
		svc := newTestEventService(repo, newFakeCategoryRepo("cat-music"), newFakeImageStore())

		_, err := svc.CreateEvent(ctx, "user-1", validSubmission())
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*fakeEventRepo, domain.EventService, string) {
		t.Helper()
		repo := newFakeEventRepo()
		svc := newTestEventService(repo, newFakeCategoryRepo("cat-music", "cat-biz"), newFakeImageStore())
		event, err := svc.CreateEvent(ctx, "user-1", validSubmission())
		require.NoError(t, err)
		return repo, svc, event.Slug
	}

	t.Run("success replaces fields and tickets, slug stays", func(t *testing.T) {
		repo, svc, slug := seed(t)

		sub := validSubmission()
		sub.Title = "Taylor Swift - The Eras Tour (Night Two)"
		sub.CategoryID = "cat-biz"
		sub.Tickets = []domain.TicketSubmission{{Type: "premium", Price: "120"}}
		updated, err := svc.UpdateEvent(ctx, slug, "user-1", sub)
		require.NoError(t, err)
		assert.Equal(t, slug, updated.Slug)

		got, err := repo.GetBySlug(ctx, slug)
		require.NoError(t, err)
		assert.Equal(t, "cat-biz", got.Event.CategoryID)
		require.Len(t, got.Tickets, 1)
		assert.Equal(t, "premium", got.Tickets[0].Type)
	})

	t.Run("not found", func(t *testing.T) {
		_, svc, _ := seed(t)
		_, err := svc.UpdateEvent(ctx, "no-such-event", "user-1", validSubmission())
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("forbidden for non-owner, event unchanged", func(t *testing.T) {
		repo, svc, slug := seed(t)
		before, err := repo.GetBySlug(ctx, slug)
		require.NoError(t, err)

		sub := validSubmission()
		sub.Venue = "Somewhere Else Entirely"
		_, err = svc.UpdateEvent(ctx, slug, "user-2", sub)
		require.ErrorIs(t, err, domain.ErrForbidden)

		after, err := repo.GetBySlug(ctx, slug)
		require.NoError(t, err)
		assert.Equal(t, before.Event, after.Event)
		assert.Equal(t, len(before.Tickets), len(after.Tickets))
	})

	t.Run("invalid payload rejected before any lookup", func(t *testing.T) {
		_, svc, slug := seed(t)
		sub := validSubmission()
		sub.Capacity = "10000"
		_, err := svc.UpdateEvent(ctx, slug, "user-1", sub)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("ticket replacement is never observed half-done", func(t *testing.T) {
		repo, svc, slug := seed(t)
		repo.updateDelay = 20 * time.Millisecond

		done := make(chan struct{})
		go func() {
			defer close(done)
			sub := validSubmission()
			sub.Tickets = []domain.TicketSubmission{{Type: "premium", Price: "120"}}
			_, err := svc.UpdateEvent(ctx, slug, "user-1", sub)
			assert.NoError(t, err)
		}()

		deadline := time.After(500 * time.Millisecond)
		for {
			select {
			case <-done:
				got, err := repo.GetBySlug(ctx, slug)
				require.NoError(t, err)
				assert.NotEmpty(t, got.Tickets)
				return
			case <-deadline:
				t.Fatal("update did not finish")
			default:
				got, err := repo.GetBySlug(ctx, slug)
				require.NoError(t, err)
				assert.NotEmpty(t, got.Tickets, "reader observed a ticketless event mid-update")
				time.Sleep(time.Millisecond)
			}
		}
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*fakeEventRepo, *fakeImageStore, domain.EventService, string) {
		t.Helper()
		repo := newFakeEventRepo()
		store := newFakeImageStore()
		svc := newTestEventService(repo, newFakeCategoryRepo("cat-music"), store)
		sub := validSubmission()
		sub.Images = []string{
			"https://img.example.com/eras-1.jpg",
			"https://img.example.com/eras-2.jpg",
			"https://img.example.com/eras-3.jpg",
		}
		event, err := svc.CreateEvent(ctx, "user-1", sub)
		require.NoError(t, err)
		return repo, store, svc, event.Slug
	}

	t.Run("success removes event and cleans up images", func(t *testing.T) {
		repo, store, svc, slug := seed(t)

		deleted, err := svc.DeleteEvent(ctx, slug, "user-1")
		require.NoError(t, err)
		assert.Equal(t, slug, deleted.Slug)
		assert.Equal(t, 3, store.deleteCount())

		_, err = repo.GetBySlug(ctx, slug)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing slug performs zero image-store calls", func(t *testing.T) {
		_, store, svc, _ := seed(t)

		_, err := svc.DeleteEvent(ctx, "no-such-event", "user-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 0, store.deleteCount())
	})

	t.Run("non-owner gets not found, zero image-store calls", func(t *testing.T) {
		repo, store, svc, slug := seed(t)

		_, err := svc.DeleteEvent(ctx, slug, "user-2")
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 0, store.deleteCount())

		_, err = repo.GetBySlug(ctx, slug)
		require.NoError(t, err)
	})

	t.Run("image-store failure does not block deletion", func(t *testing.T) {
		repo, store, svc, slug := seed(t)
		store.failWith["https://img.example.com/eras-2.jpg"] = errors.New("asset gone")

		_, err := svc.DeleteEvent(ctx, slug, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 3, store.deleteCount())

		_, err = repo.GetBySlug(ctx, slug)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventService_UpcomingPublished(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := newTestEventService(repo, newFakeCategoryRepo(), newFakeImageStore())

	got, err := svc.UpcomingPublished(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 6, repo.lastUpcoming, "limit defaults to 6")

	_, err = svc.UpcomingPublished(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, repo.lastUpcoming)
}
