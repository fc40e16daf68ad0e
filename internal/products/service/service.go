// Package service implements product administration and API key authentication.
package service

import (
	"context"
	"errors"
	"strings"

	"nuvra_crm_backend/internal/events"
	"nuvra_crm_backend/internal/leads/ports"
	"nuvra_crm_backend/internal/products/repository"
	"nuvra_crm_backend/internal/products/transport"
	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgMissingAPIKey   = "API key is required in x-api-key header"
	msgInvalidAPIKey   = "Invalid API key"
	msgAPIDisabled     = "API access is disabled for this product"
	msgProductNotFound = "Product not found"
	msgKeyNotFound     = "API key not found"
)

// Store is the persistence contract used by the service.
type Store interface {
	CreateProduct(ctx context.Context, params repository.CreateProductParams) (repository.Product, error)
	ListProducts(ctx context.Context) ([]repository.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (repository.Product, error)
	SetAPIEnabled(ctx context.Context, id uuid.UUID, enabled bool) (repository.Product, error)
	CreateKey(ctx context.Context, productID uuid.UUID, name, keyHash, keyPrefix string) (repository.APIKey, error)
	FindActiveKey(ctx context.Context, keyHash string) (repository.KeyOwner, error)
	TouchKey(ctx context.Context, keyID uuid.UUID) error
	ListKeys(ctx context.Context) ([]repository.APIKey, error)
	RevokeKey(ctx context.Context, keyID uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	store    Store
	eventBus events.Bus
	log      *logger.Logger
}

func New(store Store, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, eventBus: eventBus, log: log}
}

// Authenticate resolves an API credential to an enabled product.
func (s *Service) Authenticate(ctx context.Context, credential string) (ports.AuthenticatedProduct, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ports.AuthenticatedProduct{}, apperr.Unauthorized(msgMissingAPIKey).WithCode(apperr.CodeMissingAPIKey)
	}

	owner, err := s.store.FindActiveKey(ctx, repository.HashKey(credential))
	if errors.Is(err, repository.ErrAPIKeyNotFound) {
		return ports.AuthenticatedProduct{}, apperr.Unauthorized(msgInvalidAPIKey).WithCode(apperr.CodeInvalidAPIKey)
	}
	if err != nil {
		s.log.DatabaseError("find api key", err)
		return ports.AuthenticatedProduct{}, apperr.Store(apperr.CodeDatabaseError, err).WithOp("products.Authenticate")
	}

	if !owner.APIEnabled {
		return ports.AuthenticatedProduct{}, apperr.Forbidden(msgAPIDisabled).WithCode(apperr.CodeAPIDisabled)
	}

	if err := s.store.TouchKey(ctx, owner.KeyID); err != nil {
		s.log.WithContext(ctx).Warn("failed to stamp api key usage", "keyId", owner.KeyID, "error", err)
	}

	return ports.AuthenticatedProduct{
		ID:   owner.ProductID,
		Name: owner.ProductName,
		Slug: owner.ProductSlug,
	}, nil
}

func (s *Service) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (repository.Product, error) {
	icon, color := req.Icon, req.Color
	if icon == "" {
		icon = "box"
	}
	if color == "" {
		color = "blue"
	}

	p, err := s.store.CreateProduct(ctx, repository.CreateProductParams{
		Name:        strings.TrimSpace(req.Name),
		Slug:        req.Slug,
		Description: req.Description,
		Category:    req.Category,
		Pricing:     req.Pricing,
		Features:    req.Features,
		Icon:        icon,
		Color:       color,
		APIEnabled:  req.APIEnabled,
	})
	if err != nil {
		return repository.Product{}, apperr.Store(apperr.CodeInsertError, err)
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]repository.Product, error) {
	items, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, apperr.Store(apperr.CodeDatabaseError, err)
	}
	return items, nil
}

// SetAPIAccess enables or disables direct-API ingestion for a product.
func (s *Service) SetAPIAccess(ctx context.Context, id uuid.UUID, enabled bool) (repository.Product, error) {
	p, err := s.store.SetAPIEnabled(ctx, id, enabled)
	if errors.Is(err, repository.ErrProductNotFound) {
		return repository.Product{}, apperr.NotFound(msgProductNotFound)
	}
	if err != nil {
		return repository.Product{}, apperr.Store(apperr.CodeUpdateError, err)
	}
	s.log.WithContext(ctx).Info("product api access changed", "productId", id, "apiEnabled", enabled)
	return p, nil
}

// CreateKey issues a new key for a product. The plaintext is returned only here.
func (s *Service) CreateKey(ctx context.Context, productID uuid.UUID, name string) (transport.CreatedKey, error) {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return transport.CreatedKey{}, apperr.NotFound(msgProductNotFound)
		}
		return transport.CreatedKey{}, apperr.Store(apperr.CodeDatabaseError, err)
	}

	plaintext, hash, prefix, err := repository.GenerateAPIKey()
	if err != nil {
		return transport.CreatedKey{}, apperr.Internal("failed to generate API key")
	}

	key, err := s.store.CreateKey(ctx, productID, strings.TrimSpace(name), hash, prefix)
	if err != nil {
		return transport.CreatedKey{}, apperr.Store(apperr.CodeDatabaseError, err)
	}

	s.log.WithContext(ctx).Info("api key created", "keyId", key.ID, "productId", productID, "prefix", prefix)

	return transport.CreatedKey{
		ID:        key.ID.String(),
		Key:       plaintext,
		KeyPrefix: prefix,
		ProductID: productID.String(),
	}, nil
}

func (s *Service) ListKeys(ctx context.Context) ([]repository.APIKey, error) {
	keys, err := s.store.ListKeys(ctx)
	if err != nil {
		return nil, apperr.Store(apperr.CodeDatabaseError, err)
	}
	return keys, nil
}

// RevokeKey deactivates a key. Revoked keys never authenticate again.
func (s *Service) RevokeKey(ctx context.Context, keyID uuid.UUID) error {
	productID, err := s.store.RevokeKey(ctx, keyID)
	if errors.Is(err, repository.ErrAPIKeyNotFound) {
		return apperr.NotFound(msgKeyNotFound)
	}
	if err != nil {
		return apperr.Store(apperr.CodeDatabaseError, err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.APIKeyRevoked{
			BaseEvent: events.NewBaseEvent(),
			KeyID:     keyID,
			ProductID: productID,
		})
	}
	return nil
}

var _ ports.ProductAuthenticator = (*Service)(nil)
