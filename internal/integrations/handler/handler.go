package handler

import (
	"net/http"

	"nuvra_crm_backend/internal/integrations/service"
	"nuvra_crm_backend/internal/integrations/transport"
	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/httpkit"
	"nuvra_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "Invalid request body"
	msgValidationFailed = "Validation failed"
	msgMissingID        = "Integration ID is required"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/:id/test", h.Test)
	rg.GET("/:id/logs", h.Logs)
}

func (h *Handler) List(c *gin.Context) {
	overview, err := h.svc.Overview(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, overview)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeInvalidPayload, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidation, msgValidationFailed, validator.Violations(err, nil))
		return
	}

	it, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, http.StatusCreated, gin.H{"data": it})
}

// Test runs a connectivity test. A reachable endpoint answering with an error
// status is reported as a failed test, not as a failed request.
func (h *Handler) Test(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.svc.Test(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Logs(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	logs, err := h.svc.Logs(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, logs)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeMissingID, msgMissingID, nil)
		return uuid.Nil, false
	}
	return id, true
}
