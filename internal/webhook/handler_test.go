package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nuvra_crm_backend/internal/leads/domain"
	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVerifyToken = "nuvra_crm_verify"

type fakeCreator struct {
	drafts   []domain.Draft
	channels []domain.Channel
	err      error
}

func (f *fakeCreator) CreateFromWebhook(_ context.Context, channel domain.Channel, draft domain.Draft) (domain.Lead, error) {
	if f.err != nil {
		return domain.Lead{}, f.err
	}
	f.drafts = append(f.drafts, draft)
	f.channels = append(f.channels, channel)
	return domain.Lead{ID: uuid.New(), Draft: draft}, nil
}

func newTestRouter(creator LeadCreator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewService(creator, logger.Nop()), testVerifyToken)

	r := gin.New()
	g := r.Group("/api/v1/webhooks")
	g.POST("/meta", h.HandleMetaLead)
	g.GET("/meta", h.HandleMetaVerification)
	g.POST("/form", h.HandleFormLead)
	return r
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func bodyOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestMetaWebhookPersistsLead(t *testing.T) {
	creator := &fakeCreator{}
	rec := do(newTestRouter(creator), http.MethodPost, "/api/v1/webhooks/meta", `{"full_name":"Ana","email":"a@x.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := bodyOf(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, msgMetaReceived, body["message"])
	assert.NotEmpty(t, body["leadId"])

	require.Len(t, creator.drafts, 1)
	assert.Equal(t, domain.ChannelMeta, creator.channels[0])
	assert.Equal(t, domain.QualificationWarm, creator.drafts[0].Qualification)
}

func TestFormWebhookGuardRejectsBeforeAdapting(t *testing.T) {
	creator := &fakeCreator{}
	rec := do(newTestRouter(creator), http.MethodPost, "/api/v1/webhooks/form", `{"phone":"123","message":"hello"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := bodyOf(t, rec)
	assert.Equal(t, apperr.CodeInvalidPayload, body["error"])
	assert.Equal(t, "Missing required fields (email or name)", body["message"])
	assert.Empty(t, creator.drafts)
}

func TestWebhookRejectsNonObjectBody(t *testing.T) {
	r := newTestRouter(&fakeCreator{})
	for _, body := range []string{`[1,2]`, `{broken`, `{"email":"a@x.com"} garbage`} {
		rec := do(r, http.MethodPost, "/api/v1/webhooks/form", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, apperr.CodeInvalidPayload, bodyOf(t, rec)["error"])
	}
}

func TestWebhookStoreFailure(t *testing.T) {
	creator := &fakeCreator{err: apperr.Store(apperr.CodeSaveFailed, errors.New("duplicate key value"))}
	rec := do(newTestRouter(creator), http.MethodPost, "/api/v1/webhooks/form", `{"email":"a@x.com"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := bodyOf(t, rec)
	assert.Equal(t, apperr.CodeSaveFailed, body["error"])
	assert.Equal(t, "duplicate key value", body["message"])
	assert.NotContains(t, body, "leadId")
}

func TestMetaVerification(t *testing.T) {
	r := newTestRouter(&fakeCreator{})

	rec := do(r, http.MethodGet, "/api/v1/webhooks/meta?hub.mode=subscribe&hub.verify_token="+testVerifyToken+"&hub.challenge=12345", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	for _, query := range []string{
		"hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1",
		"hub.mode=unsubscribe&hub.verify_token=" + testVerifyToken + "&hub.challenge=1",
		"hub.challenge=1",
	} {
		rec := do(r, http.MethodGet, "/api/v1/webhooks/meta?"+query, "")
		assert.Equal(t, http.StatusForbidden, rec.Code, query)
		assert.Equal(t, apperr.CodeVerificationFailed, bodyOf(t, rec)["error"])
	}
}
