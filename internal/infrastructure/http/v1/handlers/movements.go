package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/http/v1/dto"
)

// MovementHandler serves the stock movement ledger.
type MovementHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, service *ledger.Service) *MovementHandler {
	return &MovementHandler{BaseHandler: base, service: service}
}

// Record handles POST /movements.
func (h *MovementHandler) Record(c *gin.Context) {
	var req dto.RecordMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.service.RecordMovement(c.Request.Context(), cmd)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromEntry(entry))
}

// List handles GET /movements.
func (h *MovementHandler) List(c *gin.Context) {
	var query dto.MovementListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Query(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromEntries(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
