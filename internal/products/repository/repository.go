// Package repository provides product and API key persistence.
package repository

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"nuvra_crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrAPIKeyNotFound  = errors.New("API key not found")
)

// KeyPrefix is prepended to every generated API key.
const KeyPrefix = "nuvra_"

const displayPrefixLen = 12

type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Pricing     string    `json:"pricing"`
	Features    []string  `json:"features"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	APIEnabled  bool      `json:"api_enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// APIKey is a stored key. The plaintext is never persisted.
type APIKey struct {
	ID         uuid.UUID  `json:"id"`
	ProductID  uuid.UUID  `json:"product_id"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"key_prefix"`
	IsActive   bool       `json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// KeyOwner is an active key joined with the product it authenticates.
type KeyOwner struct {
	KeyID       uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	ProductSlug string
	APIEnabled  bool
}

type CreateProductParams struct {
	Name        string
	Slug        string
	Description string
	Category    string
	Pricing     string
	Features    []string
	Icon        string
	Color       string
	APIEnabled  bool
}

// Repository provides data access for products and API keys.
type Repository struct {
	pool db.DBTX
}

func New(pool db.DBTX) *Repository {
	return &Repository{pool: pool}
}

// GenerateAPIKey creates a new random API key and returns the plaintext key, its hash
// and its display prefix. The plaintext key is returned only once; only the hash is stored.
func GenerateAPIKey() (plaintext string, hash string, prefix string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", "", err
	}
	plaintext = KeyPrefix + hex.EncodeToString(buf)
	return plaintext, HashKey(plaintext), plaintext[:displayPrefixLen], nil
}

// HashKey hashes a plaintext API key for lookup.
func HashKey(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

const productColumns = `id, name, slug, description, category, pricing, features, icon, color, api_enabled, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Category, &p.Pricing,
		&p.Features, &p.Icon, &p.Color, &p.APIEnabled, &p.CreatedAt, &p.UpdatedAt)
	if p.Features == nil {
		p.Features = []string{}
	}
	return p, err
}

func (r *Repository) CreateProduct(ctx context.Context, params CreateProductParams) (Product, error) {
	features := params.Features
	if features == nil {
		features = []string{}
	}
	return scanProduct(r.pool.QueryRow(ctx, `
		INSERT INTO products (name, slug, description, category, pricing, features, icon, color, api_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+productColumns,
		params.Name, params.Slug, params.Description, params.Category, params.Pricing,
		features, params.Icon, params.Color, params.APIEnabled,
	))
}

func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

// SetAPIEnabled toggles API access for a product.
func (r *Repository) SetAPIEnabled(ctx context.Context, id uuid.UUID, enabled bool) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `
		UPDATE products SET api_enabled = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns, id, enabled))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

// CreateKey stores a new API key record.
func (r *Repository) CreateKey(ctx context.Context, productID uuid.UUID, name, keyHash, keyPrefix string) (APIKey, error) {
	var key APIKey
	err := r.pool.QueryRow(ctx, `
		INSERT INTO api_keys (product_id, name, key_hash, key_prefix)
		VALUES ($1, $2, $3, $4)
		RETURNING id, product_id, name, key_prefix, is_active, last_used_at, created_at
	`, productID, name, keyHash, keyPrefix).Scan(
		&key.ID, &key.ProductID, &key.Name, &key.KeyPrefix, &key.IsActive, &key.LastUsedAt, &key.CreatedAt,
	)
	return key, err
}

// FindActiveKey resolves an active key hash to its owning product.
func (r *Repository) FindActiveKey(ctx context.Context, keyHash string) (KeyOwner, error) {
	var owner KeyOwner
	err := r.pool.QueryRow(ctx, `
		SELECT k.id, p.id, p.name, p.slug, p.api_enabled
		FROM api_keys k
		JOIN products p ON p.id = k.product_id
		WHERE k.key_hash = $1 AND k.is_active = true
	`, keyHash).Scan(&owner.KeyID, &owner.ProductID, &owner.ProductName, &owner.ProductSlug, &owner.APIEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return KeyOwner{}, ErrAPIKeyNotFound
	}
	return owner, err
}

// TouchKey records a successful use of a key.
func (r *Repository) TouchKey(ctx context.Context, keyID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = now() WHERE id = $1`, keyID)
	return err
}

// ListKeys returns all keys, newest first.
func (r *Repository) ListKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, name, key_prefix, is_active, last_used_at, created_at
		FROM api_keys
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]APIKey, 0)
	for rows.Next() {
		var key APIKey
		if err := rows.Scan(&key.ID, &key.ProductID, &key.Name, &key.KeyPrefix, &key.IsActive, &key.LastUsedAt, &key.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// RevokeKey deactivates an API key and returns its product.
func (r *Repository) RevokeKey(ctx context.Context, keyID uuid.UUID) (uuid.UUID, error) {
	var productID uuid.UUID
	err := r.pool.QueryRow(ctx, `
		UPDATE api_keys SET is_active = false
		WHERE id = $1 AND is_active = true
		RETURNING product_id
	`, keyID).Scan(&productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrAPIKeyNotFound
	}
	return productID, err
}
