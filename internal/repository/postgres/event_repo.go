package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"eventmarket/internal/domain"
)

const eventColumns = "id, title, slug, description, venue, capacity, schedule, status, images, category_id, host_id, created_at"

// sortColumns maps whitelisted sort fields to their SQL columns. Anything not
// in this map never reaches an ORDER BY clause.
var sortColumns = map[string]string{
	"schedule":  "schedule",
	"title":     "title",
	"status":    "status",
	"venue":     "venue",
	"capacity":  "capacity",
	"createdAt": "created_at",
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row interface {
	Scan(dest ...any) error
}) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.Venue, &e.Capacity,
		&e.Schedule, &e.Status, pq.Array(&e.Images), &e.CategoryID, &e.HostID, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// translateConstraint converts pq constraint violations into domain errors:
// a duplicate slug becomes ErrDuplicateSlug, a broken category or host
// reference becomes ErrInvalidInput.
func translateConstraint(err error) error {
	var perr *pq.Error
	if errors.As(err, &perr) {
		switch perr.Code {
		case "23505":
			return domain.ErrDuplicateSlug
		case "23503":
			return domain.ErrInvalidInput
		}
	}
	return err
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event, tickets []*domain.Ticket) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (title, slug, description, venue, capacity, schedule, status, images, category_id, host_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		e.Title, e.Slug, e.Description, e.Venue, e.Capacity, e.Schedule,
		e.Status, pq.Array(e.Images), e.CategoryID, e.HostID, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return translateConstraint(err)
	}

	for _, t := range tickets {
		t.EventID = e.ID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO tickets (event_id, type, price) VALUES ($1, $2, $3) RETURNING id`,
			t.EventID, t.Type, t.Price,
		).Scan(&t.ID)
		if err != nil {
			return translateConstraint(err)
		}
	}
	return tx.Commit()
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event, tickets []*domain.Ticket) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE events
		SET title = $2, description = $3, venue = $4, capacity = $5, schedule = $6,
		    status = $7, images = $8, category_id = $9
		WHERE id = $1
	`
	result, err := tx.ExecContext(ctx, query,
		e.ID, e.Title, e.Description, e.Venue, e.Capacity, e.Schedule,
		e.Status, pq.Array(e.Images), e.CategoryID,
	)
	if err != nil {
		return translateConstraint(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}

	// Wholesale ticket replacement. Stays inside the transaction so a
	// concurrent reader never observes a ticketless event.
	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE event_id = $1`, e.ID); err != nil {
		return err
	}
	for _, t := range tickets {
		t.EventID = e.ID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO tickets (event_id, type, price) VALUES ($1, $2, $3) RETURNING id`,
			t.EventID, t.Type, t.Price,
		).Scan(&t.ID)
		if err != nil {
			return translateConstraint(err)
		}
	}
	return tx.Commit()
}

func (r *eventRepository) Delete(ctx context.Context, slug, hostID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE slug = $1 AND host_id = $2`, slug, hostID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.EventWithRelations, error) {
	query := `
		SELECT e.id, e.title, e.slug, e.description, e.venue, e.capacity, e.schedule, e.status, e.images, e.category_id, e.host_id, e.created_at,
		       c.id, c.name, c.slug, c.display_order,
		       u.id, u.email, u.name, u.created_at, u.updated_at
		FROM events e
		JOIN categories c ON c.id = e.category_id
		JOIN users u ON u.id = e.host_id
		WHERE e.slug = $1
	`
	e := &domain.Event{}
	c := &domain.Category{}
	u := &domain.User{}
	err := r.DB.QueryRowContext(ctx, query, slug).Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.Venue, &e.Capacity,
		&e.Schedule, &e.Status, pq.Array(&e.Images), &e.CategoryID, &e.HostID, &e.CreatedAt,
		&c.ID, &c.Name, &c.Slug, &c.Order,
		&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	tickets, err := r.listTickets(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	return &domain.EventWithRelations{Event: e, Category: c, Host: u, Tickets: tickets}, nil
}

func (r *eventRepository) listTickets(ctx context.Context, eventID string) ([]*domain.Ticket, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, event_id, type, price FROM tickets WHERE event_id = $1 ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		t := &domain.Ticket{}
		if err := rows.Scan(&t.ID, &t.EventID, &t.Type, &t.Price); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// orderByClause builds a deterministic ORDER BY from the whitelisted sort
// specs. Unknown fields are skipped; with no usable spec, newest first.
func orderByClause(sorts []domain.SortSpec) string {
	var parts []string
	for _, s := range sorts {
		col, ok := sortColumns[s.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		return "created_at DESC"
	}
	return strings.Join(parts, ", ")
}

func (r *eventRepository) ListByHost(ctx context.Context, hostID string, params domain.PaginationParams, sorts []domain.SortSpec) ([]*domain.Event, int, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE host_id = $1
		ORDER BY %s
		LIMIT $2 OFFSET $3
	`, eventColumns, orderByClause(sorts))
	rows, err := r.DB.QueryContext(ctx, query, hostID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE host_id = $1`, hostID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListPublic(ctx context.Context, filter domain.ListingFilter, sort domain.SortSpec) ([]*domain.EventWithRelations, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	n := 1
	if filter.Keyword != "" {
		where = append(where, fmt.Sprintf("(e.title ILIKE $%d OR e.description ILIKE $%d OR e.venue ILIKE $%d)", n, n, n))
		args = append(args, "%"+filter.Keyword+"%")
		n++
	}
	if filter.CategorySlug != "" {
		where = append(where, fmt.Sprintf("c.slug = $%d", n))
		args = append(args, filter.CategorySlug)
		n++
	}
	query := fmt.Sprintf(`
		SELECT e.id, e.title, e.slug, e.description, e.venue, e.capacity, e.schedule, e.status, e.images, e.category_id, e.host_id, e.created_at,
		       c.id, c.name, c.slug, c.display_order,
		       u.id, u.email, u.name, u.created_at, u.updated_at
		FROM events e
		JOIN categories c ON c.id = e.category_id
		JOIN users u ON u.id = e.host_id
		WHERE %s
		ORDER BY %s
	`, strings.Join(where, " AND "), orderByClause([]domain.SortSpec{sort}))
	return r.queryWithRelations(ctx, query, args...)
}

func (r *eventRepository) ListUpcomingPublished(ctx context.Context, limit int) ([]*domain.EventWithRelations, error) {
	startOfToday := time.Now().Truncate(24 * time.Hour)
	query := `
		SELECT e.id, e.title, e.slug, e.description, e.venue, e.capacity, e.schedule, e.status, e.images, e.category_id, e.host_id, e.created_at,
		       c.id, c.name, c.slug, c.display_order,
		       u.id, u.email, u.name, u.created_at, u.updated_at
		FROM events e
		JOIN categories c ON c.id = e.category_id
		JOIN users u ON u.id = e.host_id
		WHERE e.status = $1 AND e.schedule >= $2
		ORDER BY e.schedule ASC
		LIMIT $3
	`
	return r.queryWithRelations(ctx, query, domain.StatusPublished, startOfToday, limit)
}

// queryWithRelations runs a query selecting event+category+host columns, then
// fetches all tickets for the matched events in one ANY($1) query.
func (r *eventRepository) queryWithRelations(ctx context.Context, query string, args ...interface{}) ([]*domain.EventWithRelations, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*domain.EventWithRelations, 0)
	ids := make([]string, 0)
	for rows.Next() {
		e := &domain.Event{}
		c := &domain.Category{}
		u := &domain.User{}
		err := rows.Scan(
			&e.ID, &e.Title, &e.Slug, &e.Description, &e.Venue, &e.Capacity,
			&e.Schedule, &e.Status, pq.Array(&e.Images), &e.CategoryID, &e.HostID, &e.CreatedAt,
			&c.ID, &c.Name, &c.Slug, &c.Order,
			&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, &domain.EventWithRelations{Event: e, Category: c, Host: u, Tickets: []*domain.Ticket{}})
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return results, nil
	}

	trows, err := r.DB.QueryContext(ctx,
		`SELECT id, event_id, type, price FROM tickets WHERE event_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer trows.Close()

	byEvent := make(map[string][]*domain.Ticket, len(ids))
	for trows.Next() {
		t := &domain.Ticket{}
		if err := trows.Scan(&t.ID, &t.EventID, &t.Type, &t.Price); err != nil {
			return nil, err
		}
		byEvent[t.EventID] = append(byEvent[t.EventID], t)
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}
	for _, res := range results {
		if tickets, ok := byEvent[res.Event.ID]; ok {
			res.Tickets = tickets
		}
	}
	return results, nil
}
