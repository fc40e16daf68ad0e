package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nuvra_crm_backend/internal/leads/domain"
	"nuvra_crm_backend/internal/leads/ports"
	"nuvra_crm_backend/internal/leads/repository"
	"nuvra_crm_backend/internal/leads/service"
	"nuvra_crm_backend/internal/leads/validation"
	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/logger"
	"nuvra_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	leads []domain.Lead
}

func (m *memoryStore) Insert(_ context.Context, d domain.Draft) (domain.Lead, error) {
	lead := domain.Lead{ID: uuid.New(), Draft: d, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.leads = append(m.leads, lead)
	return lead, nil
}

func (m *memoryStore) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	for _, l := range m.leads {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Lead{}, repository.ErrNotFound
}

func (m *memoryStore) List(_ context.Context, p repository.ListParams) ([]domain.Lead, int, error) {
	if p.Offset >= len(m.leads) {
		return []domain.Lead{}, len(m.leads), nil
	}
	return m.leads[p.Offset:min(p.Offset+p.Limit, len(m.leads))], len(m.leads), nil
}

func (m *memoryStore) Update(ctx context.Context, id uuid.UUID, _ repository.UpdateLeadParams) (domain.Lead, error) {
	return m.GetByID(ctx, id)
}

func (m *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	return repository.ErrNotFound
}

type keyAuth struct{}

func (keyAuth) Authenticate(_ context.Context, credential string) (ports.AuthenticatedProduct, error) {
	switch credential {
	case "":
		return ports.AuthenticatedProduct{}, apperr.Unauthorized("API key is required").WithCode(apperr.CodeMissingAPIKey)
	case "nuvra_good":
		return ports.AuthenticatedProduct{ID: uuid.New(), Name: "Site"}, nil
	case "nuvra_disabled":
		return ports.AuthenticatedProduct{}, apperr.Forbidden("API access is disabled for this product").WithCode(apperr.CodeAPIDisabled)
	default:
		return ports.AuthenticatedProduct{}, apperr.Unauthorized("Invalid API key").WithCode(apperr.CodeInvalidAPIKey)
	}
}

func newRouter(store *memoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	val := validator.New()
	svc := service.New(store, keyAuth{}, validation.New(val, "BR"), nil, nil, logger.Nop())
	h := New(svc, val)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1/leads"))
	h.RegisterAdminRoutes(r.Group("/api/v1/admin/leads"))
	return r
}

func do(r *gin.Engine, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decoded map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func TestIngestResponses(t *testing.T) {
	valid := `{"name":"Ana","email":"ana@example.com","origin":"website","phone":"+5511999999999"}`
	cases := []struct {
		name string
		key  string
		body string
		code int
		kind string
	}{
		{"missing key", "", valid, http.StatusUnauthorized, apperr.CodeMissingAPIKey},
		{"unknown key", "nuvra_other", valid, http.StatusUnauthorized, apperr.CodeInvalidAPIKey},
		{"disabled product", "nuvra_disabled", valid, http.StatusForbidden, apperr.CodeAPIDisabled},
		{"invalid body", "nuvra_good", `{"email":"nope"}`, http.StatusBadRequest, apperr.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memoryStore{}
			headers := map[string]string{}
			if tc.key != "" {
				headers[HeaderAPIKey] = tc.key
			}
			rec, body := do(newRouter(store), http.MethodPost, "/api/v1/leads", tc.body, headers)

			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, tc.kind, body["error"])
			assert.Empty(t, store.leads)
		})
	}
}

func TestIngestCreatesScoredLead(t *testing.T) {
	store := &memoryStore{}
	rec, body := do(newRouter(store), http.MethodPost, "/api/v1/leads",
		`{"name":"Ana","email":"ana@example.com","origin":"website","phone":"+5511999999999"}`,
		map[string]string{HeaderAPIKey: "nuvra_good"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, store.leads[0].ID.String(), body["leadId"])
	assert.Equal(t, domain.QualificationCold, body["qualification"])

	data := body["data"].(map[string]any)
	metadata := data["metadata"].(map[string]any)
	scoring := metadata["scoring"].(map[string]any)
	assert.EqualValues(t, 25, scoring["score"])
	assert.Equal(t, []any{"Website lead (+20)", "Has phone number (+5)"}, scoring["reasons"])
}

func TestListValidatesPagination(t *testing.T) {
	r := newRouter(&memoryStore{})

	for _, query := range []string{"?page=0", "?page=abc", "?limit=101", "?limit=0"} {
		rec, body := do(r, http.MethodGet, "/api/v1/leads"+query, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		assert.Equal(t, apperr.CodeValidation, body["error"], query)
		assert.NotEmpty(t, body["details"], query)
	}
}

func TestListReturnsPaginationEnvelope(t *testing.T) {
	store := &memoryStore{}
	for i := 0; i < 25; i++ {
		store.leads = append(store.leads, domain.Lead{ID: uuid.New()})
	}

	rec, body := do(newRouter(store), http.MethodGet, "/api/v1/leads?page=3&limit=10", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 5)
	assert.Equal(t, map[string]any{"page": 3.0, "limit": 10.0, "total": 25.0, "totalPages": 3.0}, body["pagination"])

	_, defaults := do(newRouter(store), http.MethodGet, "/api/v1/leads", "", nil)
	assert.EqualValues(t, 50, defaults["pagination"].(map[string]any)["limit"])
}

func TestAdminLeadRoutes(t *testing.T) {
	r := newRouter(&memoryStore{})

	rec, body := do(r, http.MethodGet, "/api/v1/admin/leads/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.CodeMissingID, body["error"])

	rec, body = do(r, http.MethodDelete, "/api/v1/admin/leads/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperr.CodeNotFound, body["error"])

	rec, body = do(r, http.MethodPatch, "/api/v1/admin/leads/"+uuid.NewString(), `{"status":"archived"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.CodeValidation, body["error"])
}

func TestAdminUpdateReportsFieldViolations(t *testing.T) {
	seeded := domain.Lead{ID: uuid.New(), Draft: domain.Draft{Name: "Ana", Status: domain.StatusNew}}
	r := newRouter(&memoryStore{leads: []domain.Lead{seeded}})
	path := "/api/v1/admin/leads/" + seeded.ID.String()

	cases := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{"unknown status", `{"status":"archived"}`, "status", "Status must be one of new, contacted, qualified, converted, lost"},
		{"name empty after stripping markup", `{"name":"<b></b>"}`, "name", "Name is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := do(r, http.MethodPatch, path, tc.body, nil)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, apperr.CodeValidation, body["error"])
			details, ok := body["details"].([]any)
			require.True(t, ok, "details should be a list, got %T", body["details"])
			require.Len(t, details, 1)
			assert.Equal(t, map[string]any{"field": tc.field, "message": tc.message}, details[0])
		})
	}
}
