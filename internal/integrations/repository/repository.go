// Package repository provides integration and integration log persistence.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nuvra_crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("integration not found")

// Integration types.
const (
	TypeN8N     = "n8n"
	TypeMetaAds = "meta_ads"
	TypeForm    = "form"
	TypeWebhook = "webhook"
	TypeCustom  = "custom"
)

// Log event types and statuses.
const (
	EventWebhookReceived = "webhook_received"
	EventWebhookSent     = "webhook_sent"
	EventTest            = "test"
	EventError           = "error"

	LogSuccess = "success"
	LogError   = "error"
	LogPending = "pending"
)

// LogPageSize is the number of log rows returned per integration.
const LogPageSize = 50

type Integration struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	URL             string            `json:"url"`
	Headers         map[string]string `json:"headers"`
	Active          bool              `json:"active"`
	LastTriggeredAt *time.Time        `json:"last_triggered_at"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type Log struct {
	ID            uuid.UUID      `json:"id"`
	IntegrationID uuid.UUID      `json:"integration_id"`
	EventType     string         `json:"event_type"`
	Payload       map[string]any `json:"payload"`
	Status        string         `json:"status"`
	ErrorMessage  *string        `json:"error_message"`
	Metadata      map[string]any `json:"metadata"`
	CreatedAt     time.Time      `json:"created_at"`
}

type CreateParams struct {
	Name    string
	Type    string
	URL     string
	Headers map[string]string
	Active  bool
}

type Repository struct {
	pool db.DBTX
}

func New(pool db.DBTX) *Repository {
	return &Repository{pool: pool}
}

const integrationColumns = `id, name, type, url, headers, active, last_triggered_at, created_at, updated_at`

func scanIntegration(row pgx.Row) (Integration, error) {
	var (
		it      Integration
		headers []byte
	)
	if err := row.Scan(&it.ID, &it.Name, &it.Type, &it.URL, &headers, &it.Active, &it.LastTriggeredAt, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return Integration{}, err
	}
	it.Headers = map[string]string{}
	if len(headers) > 0 {
		if err := json.Unmarshal(headers, &it.Headers); err != nil {
			return Integration{}, fmt.Errorf("decode headers: %w", err)
		}
	}
	return it, nil
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Integration, error) {
	headers := p.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	encoded, err := json.Marshal(headers)
	if err != nil {
		return Integration{}, fmt.Errorf("encode headers: %w", err)
	}

	return scanIntegration(r.pool.QueryRow(ctx, `
		INSERT INTO integrations (name, type, url, headers, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+integrationColumns,
		p.Name, p.Type, p.URL, encoded, p.Active,
	))
}

func (r *Repository) List(ctx context.Context) ([]Integration, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+integrationColumns+` FROM integrations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Integration, 0)
	for rows.Next() {
		it, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Integration, error) {
	it, err := scanIntegration(r.pool.QueryRow(ctx, `SELECT `+integrationColumns+` FROM integrations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Integration{}, ErrNotFound
	}
	return it, err
}

// MarkTriggered stamps last_triggered_at.
func (r *Repository) MarkTriggered(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE integrations SET last_triggered_at = now(), updated_at = now() WHERE id = $1`, id)
	return err
}

func (r *Repository) InsertLog(ctx context.Context, l Log) error {
	payload, err := json.Marshal(nonNil(l.Payload))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	metadata, err := json.Marshal(nonNil(l.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO integration_logs (integration_id, event_type, payload, status, error_message, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.IntegrationID, l.EventType, payload, l.Status, l.ErrorMessage, metadata)
	return err
}

// ListLogs returns the latest LogPageSize log rows of an integration.
func (r *Repository) ListLogs(ctx context.Context, integrationID uuid.UUID) ([]Log, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, integration_id, event_type, payload, status, error_message, metadata, created_at
		FROM integration_logs
		WHERE integration_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, integrationID, LogPageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]Log, 0)
	for rows.Next() {
		var (
			l                 Log
			payload, metadata []byte
		)
		if err := rows.Scan(&l.ID, &l.IntegrationID, &l.EventType, &payload, &l.Status, &l.ErrorMessage, &metadata, &l.CreatedAt); err != nil {
			return nil, err
		}
		if err := decodeObject(payload, &l.Payload); err != nil {
			return nil, err
		}
		if err := decodeObject(metadata, &l.Metadata); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func decodeObject(data []byte, dst *map[string]any) error {
	*dst = map[string]any{}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
