package handler

import (
	"net/http"
	"strconv"

	"nuvra_crm_backend/internal/leads/service"
	"nuvra_crm_backend/internal/leads/transport"
	"nuvra_crm_backend/internal/leads/validation"
	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/httpkit"
	"nuvra_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderAPIKey carries the product credential on the direct ingestion endpoint.
const HeaderAPIKey = "x-api-key"

const (
	msgInvalidRequest    = "Invalid request body"
	msgInvalidPagination = "Invalid pagination parameters"
	msgMissingID         = "Lead ID is required"
	msgInvalidLead       = "Invalid lead data"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the ingestion and list routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Ingest)
	rg.GET("", h.List)
}

// RegisterAdminRoutes mounts the dashboard lead management routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) Ingest(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeInvalidPayload, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.IngestDirect(c.Request.Context(), c.GetHeader(HeaderAPIKey), body)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, http.StatusCreated, gin.H{
		"leadId":        result.Lead.ID,
		"qualification": result.Lead.Qualification,
		"data":          result.Lead,
	})
}

func (h *Handler) List(c *gin.Context) {
	req, violations := parseListQuery(c)
	if len(violations) == 0 {
		violations = paginationViolations(h.val.Struct(req))
	}
	if len(violations) > 0 {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidation, msgInvalidPagination, violations)
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, http.StatusOK, gin.H{
		"data":       result.Items,
		"pagination": result.Pagination,
	})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeInvalidPayload, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidation, msgInvalidLead, validator.Violations(err, nil))
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, http.StatusOK, gin.H{"message": "Lead updated successfully", "data": lead})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, http.StatusOK, gin.H{"message": "Lead deleted successfully"})
}

func leadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeMissingID, msgMissingID, nil)
		return uuid.Nil, false
	}
	return id, true
}

var paginationMessages = map[string]string{
	"page":  "Page must be a positive integer",
	"limit": "Limit must be between 1 and 100",
}

// parseListQuery applies defaults and reports values that are not integers.
func parseListQuery(c *gin.Context) (transport.ListLeadsRequest, []validation.FieldViolation) {
	req := transport.ListLeadsRequest{Page: transport.DefaultPage, Limit: transport.DefaultLimit}
	violations := make([]validation.FieldViolation, 0)

	parse := func(field string, dst *int) {
		raw := c.Query(field)
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			violations = append(violations, validation.FieldViolation{Field: field, Message: paginationMessages[field]})
			return
		}
		*dst = n
	}
	parse("page", &req.Page)
	parse("limit", &req.Limit)

	return req, violations
}

func paginationViolations(err error) []validation.FieldViolation {
	return validator.Violations(err, paginationMessages)
}
