package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nuvra_crm_backend/internal/leads/domain"
	"nuvra_crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool db.DBTX
}

func New(pool db.DBTX) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, name, email, phone, company, origin, qualification, status,
	value, notes, metadata, product_id, created_at, updated_at`

// Insert persists a draft. Store-level failures are returned unchanged so the
// caller can surface the store's message.
func (r *Repository) Insert(ctx context.Context, d domain.Draft) (domain.Lead, error) {
	metadata, err := json.Marshal(nonNilMetadata(d.Metadata))
	if err != nil {
		return domain.Lead{}, fmt.Errorf("encode metadata: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, company, origin, qualification, status, value, notes, metadata, product_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+leadColumns,
		d.Name, d.Email, d.Phone, d.Company, d.Origin, d.Qualification, d.Status, d.Value, d.Notes, metadata, d.ProductID,
	)
	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

// List returns one page of leads, newest first, and the total count.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return items, total, nil
}

// Update applies the non-nil fields of params.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (domain.Lead, error) {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Email != nil {
		add("email", *params.Email)
	}
	if params.Phone != nil {
		add("phone", *params.Phone)
	}
	if params.Company != nil {
		add("company", *params.Company)
	}
	if params.Notes != nil {
		add("notes", *params.Notes)
	}
	if params.Value != nil {
		add("value", *params.Value)
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.Qualification != nil {
		add("qualification", *params.Qualification)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE leads SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead     domain.Lead
		metadata []byte
	)
	if err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company, &lead.Origin,
		&lead.Qualification, &lead.Status, &lead.Value, &lead.Notes, &metadata,
		&lead.ProductID, &lead.CreatedAt, &lead.UpdatedAt,
	); err != nil {
		return domain.Lead{}, err
	}

	lead.Metadata = map[string]any{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &lead.Metadata); err != nil {
			return domain.Lead{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return lead, nil
}

func nonNilMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
