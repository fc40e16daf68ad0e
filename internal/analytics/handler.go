package analytics

import (
	"nuvra_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleReport returns the lead report for ?period=7d|30d|90d.
func (h *Handler) HandleReport(c *gin.Context) {
	report, err := h.service.Report(c.Request.Context(), c.Query("period"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

// HandleSources returns the per-origin breakdown.
func (h *Handler) HandleSources(c *gin.Context) {
	sources, err := h.service.Sources(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, sources)
}
