package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/domain"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/pointofsale"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/http/v1/dto"
)

// PointOfSaleHandler serves the point-of-sale catalog.
type PointOfSaleHandler struct {
	*BaseHandler
	service *pointofsale.Service
}

// NewPointOfSaleHandler creates a new point of sale handler.
func NewPointOfSaleHandler(base *BaseHandler, service *pointofsale.Service) *PointOfSaleHandler {
	return &PointOfSaleHandler{BaseHandler: base, service: service}
}

// List handles GET /catalog/points-of-sale.
func (h *PointOfSaleHandler) List(c *gin.Context) {
	base := domain.DefaultListFilter()
	base.Search = c.Query("search")
	base.Limit = h.ParseIntQuery(c, "limit", 50)
	base.Offset = h.ParseIntQuery(c, "offset", 0)
	base.OrderBy = c.DefaultQuery("orderBy", "name")
	base.IncludeDeleted = c.Query("includeDeleted") == "true"

	filter := pointofsale.ListFilter{ListFilter: base}
	if regionParam := c.Query("regionId"); regionParam != "" {
		regionID, err := id.Parse(regionParam)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid region id").WithDetail("regionId", regionParam))
			return
		}
		filter.RegionID = &regionID
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /catalog/points-of-sale/:id.
func (h *PointOfSaleHandler) Get(c *gin.Context) {
	posID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	pos, err := h.service.GetByID(c.Request.Context(), posID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, pos)
}

// Create handles POST /catalog/points-of-sale.
func (h *PointOfSaleHandler) Create(c *gin.Context) {
	var req dto.CreatePointOfSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pos, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), pos); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, pos)
}

// Update handles PUT /catalog/points-of-sale/:id.
func (h *PointOfSaleHandler) Update(c *gin.Context) {
	posID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePointOfSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	pos, err := h.service.GetByID(ctx, posID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(pos); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Update(ctx, pos); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, pos)
}

// SetDeletionMark handles POST /catalog/points-of-sale/:id/deletion-mark.
func (h *PointOfSaleHandler) SetDeletionMark(c *gin.Context) {
	posID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.SetDeletionMarkRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetDeletionMark(c.Request.Context(), posID, req.Marked); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "deletion mark updated")
}

// Delete handles DELETE /catalog/points-of-sale/:id (soft delete).
func (h *PointOfSaleHandler) Delete(c *gin.Context) {
	posID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.SetDeletionMark(c.Request.Context(), posID, true); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
