package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okateru/plango/internal/domain"
)

type PlanRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *PlanRepo) With(db DB) *PlanRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PlanRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// ListSummaries returns plan summaries, optionally filtered by linked
// location. Element count and total bookable capacity are computed from the
// stored jsonb document.
func (r *PlanRepo) ListSummaries(ctx context.Context, locationID string) ([]domain.PlanSummary, error) {
	const op = "postgres.PlanRepo.ListSummaries"

	db := r.handle()

	query := `SELECT p.id, p.title, COALESCE(p.thumbnail, ''),
	            COALESCE(jsonb_array_length(p.document->'elements'), 0),
	            COALESCE((SELECT SUM((e->>'capacity')::int)
	                      FROM jsonb_array_elements(p.document->'elements') e
	                      WHERE (e->>'bookable')::boolean), 0),
	            COALESCE(l.name, '')
	          FROM floor_plans p
	          LEFT JOIN locations l ON l.id = p.location_id`
	args := []any{}
	if locationID != "" {
		query += ` WHERE p.location_id = $1`
		args = append(args, locationID)
	}
	query += ` ORDER BY p.updated_at DESC`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.PlanSummary
	for rows.Next() {
		var s domain.PlanSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Thumbnail, &s.ElementCount, &s.TotalCapacity, &s.LocationName); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Get retrieves a full floor-plan document by its ID.
//
// Returns repository.ErrNotFound when the plan does not exist.
func (r *PlanRepo) Get(ctx context.Context, id string) (*domain.FloorPlan, error) {
	const op = "postgres.PlanRepo.Get"

	db := r.handle()

	var (
		title      string
		locationID string
		doc        []byte
	)
	err := db.QueryRow(ctx,
		`SELECT title, COALESCE(location_id, ''), document
		 FROM floor_plans WHERE id = $1`,
		id,
	).Scan(&title, &locationID, &doc)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	var plan domain.FloorPlan
	if err := json.Unmarshal(doc, &plan); err != nil {
		return nil, fmt.Errorf("%s: decode document: %w", op, err)
	}

	// The columns are authoritative over whatever the blob carries.
	plan.ID = id
	plan.Title = title
	plan.LinkedLocation = locationID
	if plan.Sections == nil {
		plan.Sections = []domain.Section{}
	}
	if plan.Elements == nil {
		plan.Elements = []domain.Element{}
	}

	return &plan, nil
}

// Save persists a plan, creating it when it has no id yet. Returns the
// assigned id. Last write wins; there is no version check.
func (r *PlanRepo) Save(ctx context.Context, plan *domain.FloorPlan) (string, error) {
	const op = "postgres.PlanRepo.Save"

	db := r.handle()

	if plan.ID == "" {
		plan.ID = domain.NewID()
	}

	doc, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("%s: encode document: %w", op, err)
	}

	var locationID *string
	if plan.LinkedLocation != "" {
		locationID = &plan.LinkedLocation
	}

	_, err = db.Exec(ctx,
		`INSERT INTO floor_plans (id, title, location_id, document, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (id) DO UPDATE
		 SET title = excluded.title,
		     location_id = excluded.location_id,
		     document = excluded.document,
		     updated_at = now()`,
		plan.ID, plan.Title, locationID, doc,
	)
	if err != nil {
		return "", wrapDBErr(op, err)
	}

	return plan.ID, nil
}

// Duplicate copies a stored plan under a new id and returns it.
func (r *PlanRepo) Duplicate(ctx context.Context, id string) (string, error) {
	const op = "postgres.PlanRepo.Duplicate"

	plan, err := r.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	cp := plan.Clone()
	cp.ID = domain.NewID()
	cp.Title = plan.Title + " (Copy)"

	newID, err := r.Save(ctx, cp)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	return newID, nil
}

// Delete removes a plan.
//
// Returns repository.ErrNotFound when the plan does not exist.
func (r *PlanRepo) Delete(ctx context.Context, id string) error {
	const op = "postgres.PlanRepo.Delete"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM floor_plans WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, pgx.ErrNoRows)
	}

	return nil
}

// SetThumbnail stores a rendered preview reference for list views.
func (r *PlanRepo) SetThumbnail(ctx context.Context, id, thumbnail string) error {
	const op = "postgres.PlanRepo.SetThumbnail"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE floor_plans SET thumbnail = $2 WHERE id = $1`,
		id, thumbnail,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, pgx.ErrNoRows)
	}

	return nil
}
