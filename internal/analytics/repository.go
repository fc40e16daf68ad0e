package analytics

import (
	"context"
	"time"

	"nuvra_crm_backend/platform/db"
)

// Repository reads lead projections for aggregation.
type Repository struct {
	pool db.DBTX
}

func NewRepository(pool db.DBTX) *Repository {
	return &Repository{pool: pool}
}

// ListSince returns every lead created at or after since.
func (r *Repository) ListSince(ctx context.Context, since time.Time) ([]LeadRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT origin, qualification, status, value::float8, created_at
		FROM leads
		WHERE created_at >= $1
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]LeadRow, 0)
	for rows.Next() {
		var l LeadRow
		if err := rows.Scan(&l.Origin, &l.Qualification, &l.Status, &l.Value, &l.CreatedAt); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// DistinctOrigins returns non-empty origins, most recently seen first.
func (r *Repository) DistinctOrigins(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT origin
		FROM leads
		WHERE origin <> ''
		GROUP BY origin
		ORDER BY MAX(created_at) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	origins := make([]string, 0)
	for rows.Next() {
		var origin string
		if err := rows.Scan(&origin); err != nil {
			return nil, err
		}
		origins = append(origins, origin)
	}
	return origins, rows.Err()
}

// OriginBreakdown counts leads of one origin by qualification.
func (r *Repository) OriginBreakdown(ctx context.Context, origin string) (SourceSummary, error) {
	s := SourceSummary{Origin: origin}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE qualification = 'hot'),
		       COUNT(*) FILTER (WHERE qualification = 'warm'),
		       COUNT(*) FILTER (WHERE qualification = 'cold')
		FROM leads
		WHERE origin = $1
	`, origin).Scan(&s.Total, &s.Hot, &s.Warm, &s.Cold)
	return s, err
}
