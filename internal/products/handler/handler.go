package handler

import (
	"net/http"
	"strings"

	"nuvra_crm_backend/internal/products/service"
	"nuvra_crm_backend/internal/products/transport"
	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/httpkit"
	"nuvra_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "Invalid request body"
	msgValidationFailed = "Validation failed"
	msgMissingName      = "Name is required"
	msgMissingID        = "ID is required"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterProductRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.CreateProduct)
	rg.GET("", h.ListProducts)
	rg.PATCH("/:id/api-access", h.SetAPIAccess)
}

func (h *Handler) RegisterKeyRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.CreateKey)
	rg.GET("", h.ListKeys)
	rg.DELETE("/:keyId", h.RevokeKey)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req transport.CreateProductRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	product, err := h.svc.CreateProduct(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, http.StatusCreated, gin.H{"data": product})
}

func (h *Handler) ListProducts(c *gin.Context) {
	items, err := h.svc.ListProducts(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, items)
}

func (h *Handler) SetAPIAccess(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req transport.SetAPIAccessRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	product, err := h.svc.SetAPIAccess(c.Request.Context(), id, *req.APIEnabled)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, product)
}

func (h *Handler) CreateKey(c *gin.Context) {
	var req transport.CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeInvalidPayload, msgInvalidRequest, nil)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeMissingName, msgMissingName, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidation, msgValidationFailed, validator.Violations(err, nil))
		return
	}

	created, err := h.svc.CreateKey(c.Request.Context(), uuid.MustParse(req.ProductID), req.Name)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, http.StatusCreated, gin.H{"data": created})
}

func (h *Handler) ListKeys(c *gin.Context) {
	keys, err := h.svc.ListKeys(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, keys)
}

func (h *Handler) RevokeKey(c *gin.Context) {
	id, ok := pathID(c, "keyId")
	if !ok {
		return
	}

	if err := h.svc.RevokeKey(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.Success(c, http.StatusOK, gin.H{"message": "API key revoked"})
}

func (h *Handler) bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeInvalidPayload, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidation, msgValidationFailed, validator.Violations(err, nil))
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeMissingID, msgMissingID, nil)
		return uuid.Nil, false
	}
	return id, true
}
