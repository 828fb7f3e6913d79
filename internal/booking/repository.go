package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)

	// UpdateStatus writes booking.Status only if the stored status still equals prev.
	// It returns ErrConcurrentDecision when another writer got there first.
	UpdateStatus(ctx context.Context, booking *Booking, prev Status) error

	List(ctx context.Context, filter Filter) ([]*Booking, error)

	// LastForItems returns, per item, the booking with the greatest start <= now.
	LastForItems(ctx context.Context, itemIDs []string, now time.Time) (map[string]*Booking, error)
	// NextForItems returns, per item, the booking with the smallest start > now, whatever its status.
	NextForItems(ctx context.Context, itemIDs []string, now time.Time) (map[string]*Booking, error)

	// HasCompleted reports whether an approved booking by bookerID for itemID ended before now.
	HasCompleted(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func selectBookings(options ...string) squirrel.SelectBuilder {
	return psql.Select(
		"b.id", "b.item_id", "i.name", "b.owner_id", "b.booker_id", "u.name",
		"b.start_time", "b.end_time", "b.status", "b.created_at", "b.updated_at",
	).
		Options(options...).
		From("public.bookings b").
		Join("public.items i ON b.item_id = i.id").
		Join("public.users u ON b.booker_id = u.id")
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.ItemID, &b.ItemName, &b.OwnerID, &b.BookerID, &b.BookerName,
		&b.Start, &b.End, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if !b.Status.Valid() {
		return nil, fmt.Errorf("booking %s has unknown status %q", b.ID, b.Status)
	}
	return &b, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns("item_id", "owner_id", "booker_id", "start_time", "end_time", "status").
		Values(b.ItemID, b.OwnerID, b.BookerID, b.Start, b.End, b.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := selectBookings().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, b *Booking, prev Status) error {
	query, args, err := psql.Update("public.bookings").
		Set("status", b.Status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID, "status": prev}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking status query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConcurrentDecision
		}
		return fmt.Errorf("update booking status failed: %w", err)
	}
	return nil
}

// stateCondition is the SQL form of State.Matches.
func stateCondition(s State, now time.Time) squirrel.Sqlizer {
	switch s {
	case StateCurrent:
		return squirrel.And{
			squirrel.LtOrEq{"b.start_time": now},
			squirrel.Gt{"b.end_time": now},
		}
	case StateFuture:
		return squirrel.Gt{"b.start_time": now}
	case StatePast:
		return squirrel.Lt{"b.end_time": now}
	case StateWaiting:
		return squirrel.Eq{"b.status": StatusWaiting}
	case StateRejected:
		return squirrel.Eq{"b.status": StatusRejected}
	default:
		return nil
	}
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, error) {
	query := selectBookings()

	if filter.BookerID != "" {
		query = query.Where(squirrel.Eq{"b.booker_id": filter.BookerID})
	}
	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"b.owner_id": filter.OwnerID})
	}
	if cond := stateCondition(filter.State, filter.Now); cond != nil {
		query = query.Where(cond)
	}

	query = query.OrderBy("b.start_time DESC", "b.id DESC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	bookings := []*Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, nil
}

func (r *pgxRepository) LastForItems(ctx context.Context, itemIDs []string, now time.Time) (map[string]*Booking, error) {
	query := selectBookings("DISTINCT ON (b.item_id)").
		Where(squirrel.Eq{"b.item_id": itemIDs}).
		Where(squirrel.LtOrEq{"b.start_time": now}).
		OrderBy("b.item_id", "b.start_time DESC", "b.id DESC")
	return r.perItem(ctx, query)
}

func (r *pgxRepository) NextForItems(ctx context.Context, itemIDs []string, now time.Time) (map[string]*Booking, error) {
	query := selectBookings("DISTINCT ON (b.item_id)").
		Where(squirrel.Eq{"b.item_id": itemIDs}).
		Where(squirrel.Gt{"b.start_time": now}).
		OrderBy("b.item_id", "b.start_time ASC", "b.id ASC")
	return r.perItem(ctx, query)
}

func (r *pgxRepository) perItem(ctx context.Context, query squirrel.SelectBuilder) (map[string]*Booking, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item timeline query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("item timeline query failed: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*Booking)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		result[b.ItemID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return result, nil
}

func (r *pgxRepository) HasCompleted(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error) {
	subQuery := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{
			"booker_id": bookerID,
			"item_id":   itemID,
			"status":    StatusApproved,
		}).
		Where(squirrel.Lt{"end_time": now})

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build completed booking query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check completed booking failed: %w", err)
	}
	return exists, nil
}
