package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shabani2/salemanagement-api/internal/domain/reports"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves role-scoped aggregations.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// Aggregate handles GET /reports/movements.
func (h *ReportsHandler) Aggregate(c *gin.Context) {
	var req dto.AggregateQueryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	query, err := req.ToQuery()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Aggregate(c.Request.Context(), query)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// TopProducts handles GET /reports/top-products.
func (h *ReportsHandler) TopProducts(c *gin.Context) {
	var req dto.TopProductsQueryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	ranked, err := h.service.TopProducts(c.Request.Context(), req.ToQuery())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": ranked})
}
