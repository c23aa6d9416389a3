package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shabani2/salemanagement-api/internal/domain"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/region"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/http/v1/dto"
)

// RegionHandler serves the region catalog.
type RegionHandler struct {
	*BaseHandler
	service *region.Service
}

// NewRegionHandler creates a new region handler.
func NewRegionHandler(base *BaseHandler, service *region.Service) *RegionHandler {
	return &RegionHandler{BaseHandler: base, service: service}
}

// List handles GET /catalog/regions.
func (h *RegionHandler) List(c *gin.Context) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

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

// Get handles GET /catalog/regions/:id.
func (h *RegionHandler) Get(c *gin.Context) {
	regionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), regionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// Create handles POST /catalog/regions.
func (h *RegionHandler) Create(c *gin.Context) {
	var req dto.CreateRegionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), r); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, r)
}

// Update handles PUT /catalog/regions/:id.
func (h *RegionHandler) Update(c *gin.Context) {
	regionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateRegionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	r, err := h.service.GetByID(ctx, regionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(r)
	if err := h.service.Update(ctx, r); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// SetDeletionMark handles POST /catalog/regions/:id/deletion-mark.
func (h *RegionHandler) SetDeletionMark(c *gin.Context) {
	regionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.SetDeletionMarkRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetDeletionMark(c.Request.Context(), regionID, req.Marked); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "deletion mark updated")
}

// Delete handles DELETE /catalog/regions/:id (soft delete).
func (h *RegionHandler) Delete(c *gin.Context) {
	regionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.SetDeletionMark(c.Request.Context(), regionID, true); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
