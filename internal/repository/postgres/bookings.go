package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRepo reads booking rows written by the external booking engine. This
// service never writes them; they are only the input for the availability
// overlay.
type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// BookedSeatsByElement returns the number of confirmed seats per element for
// an event on a plan. Elements with no bookings are absent from the map.
func (r *BookingRepo) BookedSeatsByElement(ctx context.Context, planID, eventID string) (map[string]int, error) {
	const op = "postgres.BookingRepo.BookedSeatsByElement"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT element_id, COALESCE(SUM(seats), 0)
		 FROM bookings
		 WHERE floor_plan_id = $1 AND event_id = $2 AND status IN ('pending', 'confirmed')
		 GROUP BY element_id`,
		planID, eventID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			elementID string
			seats     int
		)
		if err := rows.Scan(&elementID, &seats); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out[elementID] = seats
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
