package webhook

import (
	"crypto/subtle"
	"net/http"

	"nuvra_crm_backend/internal/leads/domain"
	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	modeSubscribe = "subscribe"

	msgInvalidPayload     = "Invalid JSON payload"
	msgInvalidVerifyToken = "Invalid verification token"
	msgMetaReceived       = "Lead received from Meta Ads"
	msgFormReceived       = "Lead received from external form"
)

// Handler handles webhook HTTP requests.
type Handler struct {
	service     *Service
	verifyToken string
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service, verifyToken string) *Handler {
	return &Handler{service: service, verifyToken: verifyToken}
}

// HandleMetaLead receives a Meta Lead Ads payload.
// POST /api/v1/webhooks/meta
func (h *Handler) HandleMetaLead(c *gin.Context) {
	h.receive(c, domain.ChannelMeta, msgMetaReceived)
}

// HandleFormLead receives a generic form payload.
// POST /api/v1/webhooks/form
func (h *Handler) HandleFormLead(c *gin.Context) {
	h.receive(c, domain.ChannelForm, msgFormReceived)
}

// HandleMetaVerification answers the Meta subscription handshake.
// GET /api/v1/webhooks/meta
func (h *Handler) HandleMetaVerification(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != modeSubscribe || h.verifyToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) != 1 {
		httpkit.Error(c, http.StatusForbidden, apperr.CodeVerificationFailed, msgInvalidVerifyToken, nil)
		return
	}

	c.String(http.StatusOK, challenge)
}

func (h *Handler) receive(c *gin.Context, channel domain.Channel, successMessage string) {
	body, err := c.GetRawData()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeInvalidPayload, msgInvalidPayload, nil)
		return
	}

	payload, err := Decode(channel, body)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeInvalidPayload, msgInvalidPayload, nil)
		return
	}

	leadID, err := h.service.Receive(c.Request.Context(), payload)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, http.StatusOK, gin.H{
		"message": successMessage,
		"leadId":  leadID,
	})
}
