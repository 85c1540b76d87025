package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"eventmarket/internal/domain"
)

var createdAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleEvent() *domain.Event {
	return &domain.Event{
		Title:       "taylor swift - the eras tour",
		Slug:        "taylor-swift-the-eras-tour",
		Description: "A once in a lifetime stadium show.",
		Venue:       "Wembley Stadium",
		Capacity:    9000,
		Schedule:    time.Date(2026, 9, 18, 19, 30, 0, 0, time.UTC),
		Status:      domain.StatusPublished,
		Images:      []string{"https://img.example.com/eras.jpg"},
		CategoryID:  "cat-music",
		HostID:      "user-1",
		CreatedAt:   createdAt,
	}
}

func sampleTickets() []*domain.Ticket {
	return []*domain.Ticket{
		{Type: "general", Price: decimal.RequireFromString("89.50")},
		{Type: "vip", Price: decimal.RequireFromString("450")},
	}
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
				mock.ExpectQuery(`INSERT INTO tickets`).
					WithArgs("ev-1", "general", decimal.RequireFromString("89.50")).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t-1"))
				mock.ExpectQuery(`INSERT INTO tickets`).
					WithArgs("ev-1", "vip", decimal.RequireFromString("450")).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t-2"))
				mock.ExpectCommit()
			},
		},
		{
			name: "duplicate slug",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrDuplicateSlug,
		},
		{
			name: "unknown category",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(&pq.Error{Code: "23503"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "db error on ticket insert",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
				mock.ExpectQuery(`INSERT INTO tickets`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, sampleEvent(), sampleTickets())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success replaces tickets in one transaction",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`DELETE FROM tickets WHERE event_id = \$1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectQuery(`INSERT INTO tickets`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t-3"))
				mock.ExpectQuery(`INSERT INTO tickets`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t-4"))
				mock.ExpectCommit()
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			e := sampleEvent()
			e.ID = "ev-1"
			err = repo.Update(ctx, e, sampleTickets())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		slug    string
		hostID  string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name:   "success",
			slug:   "taylor-swift-the-eras-tour",
			hostID: "user-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE slug = \$1 AND host_id = \$2`).
					WithArgs("taylor-swift-the-eras-tour", "user-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:   "not owned",
			slug:   "taylor-swift-the-eras-tour",
			hostID: "user-2",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE slug = \$1 AND host_id = \$2`).
					WithArgs("taylor-swift-the-eras-tour", "user-2").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:   "db error",
			slug:   "whatever",
			hostID: "user-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Delete(ctx, tt.slug, tt.hostID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("success with relations", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		cols := []string{
			"id", "title", "slug", "description", "venue", "capacity", "schedule", "status", "images", "category_id", "host_id", "created_at",
			"c_id", "c_name", "c_slug", "c_order",
			"u_id", "u_email", "u_name", "u_created_at", "u_updated_at",
		}
		mock.ExpectQuery(`SELECT (.+) FROM events e`).
			WithArgs("taylor-swift-the-eras-tour").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(
				"ev-1", "taylor swift - the eras tour", "taylor-swift-the-eras-tour", "A once in a lifetime stadium show.", "Wembley Stadium", 9000,
				time.Date(2026, 9, 18, 19, 30, 0, 0, time.UTC), "Published", "{https://img.example.com/eras.jpg}", "cat-music", "user-1", createdAt,
				"cat-music", "Music", "music", 1,
				"user-1", "host@example.com", "Host", createdAt, createdAt,
			))
		mock.ExpectQuery(`SELECT id, event_id, type, price FROM tickets`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "type", "price"}).
				AddRow("t-1", "ev-1", "general", "89.50").
				AddRow("t-2", "ev-1", "vip", "450"))

		repo := NewEventRepository(db)
		got, err := repo.GetBySlug(ctx, "taylor-swift-the-eras-tour")
		require.NoError(t, err)
		require.Equal(t, "ev-1", got.Event.ID)
		require.Equal(t, []string{"https://img.example.com/eras.jpg"}, got.Event.Images)
		require.Equal(t, "Music", got.Category.Name)
		require.Equal(t, "host@example.com", got.Host.Email)
		require.Len(t, got.Tickets, 2)
		require.True(t, got.Tickets[0].Price.Equal(decimal.RequireFromString("89.50")))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events e`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		got, err := repo.GetBySlug(ctx, "missing")
		require.Nil(t, got)
		require.True(t, errors.Is(err, domain.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_ListByHost(t *testing.T) {
	ctx := context.Background()

	eventCols := []string{"id", "title", "slug", "description", "venue", "capacity", "schedule", "status", "images", "category_id", "host_id", "created_at"}

	t.Run("paginated with default sort", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events\s+WHERE host_id = \$1\s+ORDER BY created_at DESC\s+LIMIT \$2 OFFSET \$3`).
			WithArgs("user-1", 10, 10).
			WillReturnRows(sqlmock.NewRows(eventCols).AddRow(
				"ev-2", "jazz night", "jazz-night", "An evening of smooth jazz.", "Blue Note", 200,
				time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC), "Draft", "{https://img.example.com/jazz.jpg}", "cat-music", "user-1", createdAt,
			))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events WHERE host_id = \$1`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

		repo := NewEventRepository(db)
		events, total, err := repo.ListByHost(ctx, "user-1", domain.PaginationParams{Page: 2, PageSize: 10}, nil)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, 11, total)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown sort field is dropped", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		// "id; DROP TABLE events" never reaches the query: the whitelist
		// leaves no usable field, so the default order applies.
		mock.ExpectQuery(`ORDER BY created_at DESC`).
			WithArgs("user-1", 10, 0).
			WillReturnRows(sqlmock.NewRows(eventCols))
		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		repo := NewEventRepository(db)
		_, _, err = repo.ListByHost(ctx, "user-1", domain.PaginationParams{Page: 1, PageSize: 10},
			[]domain.SortSpec{{Field: "id; DROP TABLE events", Desc: true}})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("whitelisted sort fields", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`ORDER BY schedule ASC, title DESC`).
			WithArgs("user-1", 10, 0).
			WillReturnRows(sqlmock.NewRows(eventCols))
		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		repo := NewEventRepository(db)
		_, _, err = repo.ListByHost(ctx, "user-1", domain.PaginationParams{Page: 1, PageSize: 10},
			[]domain.SortSpec{{Field: "schedule"}, {Field: "title", Desc: true}})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_ListPublic(t *testing.T) {
	ctx := context.Background()

	relCols := []string{
		"id", "title", "slug", "description", "venue", "capacity", "schedule", "status", "images", "category_id", "host_id", "created_at",
		"c_id", "c_name", "c_slug", "c_order",
		"u_id", "u_email", "u_name", "u_created_at", "u_updated_at",
	}

	t.Run("keyword and category filters", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`e\.title ILIKE \$1 OR e\.description ILIKE \$1 OR e\.venue ILIKE \$1(.+)c\.slug = \$2`).
			WithArgs("%jazz%", "music").
			WillReturnRows(sqlmock.NewRows(relCols).AddRow(
				"ev-2", "jazz night", "jazz-night", "An evening of smooth jazz.", "Blue Note", 200,
				time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC), "Published", "{https://img.example.com/jazz.jpg}", "cat-music", "user-1", createdAt,
				"cat-music", "Music", "music", 1,
				"user-1", "host@example.com", "Host", createdAt, createdAt,
			))
		mock.ExpectQuery(`SELECT id, event_id, type, price FROM tickets WHERE event_id = ANY\(\$1\)`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "type", "price"}).
				AddRow("t-1", "ev-2", "general", "25"))

		repo := NewEventRepository(db)
		got, err := repo.ListPublic(ctx, domain.ListingFilter{Keyword: "jazz", CategorySlug: "music"}, domain.SortSpec{Field: "schedule"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Len(t, got[0].Tickets, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matches skips ticket query", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM events e`).
			WillReturnRows(sqlmock.NewRows(relCols))

		repo := NewEventRepository(db)
		got, err := repo.ListPublic(ctx, domain.ListingFilter{}, domain.SortSpec{})
		require.NoError(t, err)
		require.Empty(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_ListUpcomingPublished(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	relCols := []string{
		"id", "title", "slug", "description", "venue", "capacity", "schedule", "status", "images", "category_id", "host_id", "created_at",
		"c_id", "c_name", "c_slug", "c_order",
		"u_id", "u_email", "u_name", "u_created_at", "u_updated_at",
	}
	mock.ExpectQuery(`WHERE e\.status = \$1 AND e\.schedule >= \$2\s+ORDER BY e\.schedule ASC\s+LIMIT \$3`).
		WithArgs(domain.StatusPublished, sqlmock.AnyArg(), 6).
		WillReturnRows(sqlmock.NewRows(relCols))

	repo := NewEventRepository(db)
	got, err := repo.ListUpcomingPublished(ctx, 6)
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
