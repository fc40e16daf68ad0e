package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nuvra_crm_backend/internal/products/repository"
	"nuvra_crm_backend/internal/products/service"
	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/logger"
	"nuvra_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyStore struct {
	service.Store
}

func (emptyStore) GetProduct(context.Context, uuid.UUID) (repository.Product, error) {
	return repository.Product{}, repository.ErrProductNotFound
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	val := validator.New()
	_ = val.RegisterValidation("productslug", func(fl govalidator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), " _ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	})
	h := New(service.New(emptyStore{}, nil, logger.Nop()), val)

	r := gin.New()
	h.RegisterProductRoutes(r.Group("/products"))
	h.RegisterKeyRoutes(r.Group("/keys"))
	return r
}

func post(r *gin.Engine, path, body string) (int, map[string]any) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	var decoded map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec.Code, decoded
}

func TestCreateKeyRequiresName(t *testing.T) {
	code, body := post(newRouter(), "/keys", `{"product_id":"`+uuid.NewString()+`"}`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperr.CodeMissingName, body["error"])
}

func TestCreateKeyUnknownProduct(t *testing.T) {
	code, body := post(newRouter(), "/keys", `{"name":"prod","product_id":"`+uuid.NewString()+`"}`)

	require.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, apperr.CodeNotFound, body["error"])
}

func TestCreateProductRejectsBadSlug(t *testing.T) {
	code, body := post(newRouter(), "/products", `{"name":"Site","slug":"Not A Slug"}`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperr.CodeValidation, body["error"])
	assert.Equal(t, []any{map[string]any{"field": "slug", "message": "Invalid value"}}, body["details"])
}
