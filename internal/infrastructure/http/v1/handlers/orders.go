package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shabani2/salemanagement-api/internal/domain/orders"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/http/v1/dto"
)

// OrderHandler serves order capture and per-line fulfillment.
type OrderHandler struct {
	*BaseHandler
	service *orders.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *orders.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		h.Error(c, err)
		return
	}

	order, err := h.service.Create(c.Request.Context(), cmd)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromOrder(order))
}

// List handles GET /orders.
func (h *OrderHandler) List(c *gin.Context) {
	var query dto.OrderListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromOrders(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.Get(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(order))
}

// DeliverLine handles POST /orders/:id/lines/:lineId/deliver.
func (h *OrderHandler) DeliverLine(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParamID(c, "lineId")
	if !ok {
		return
	}

	line, err := h.service.DeliverLine(c.Request.Context(), orderID, lineID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromLine(line))
}

// Audit handles GET /orders/:id/audit.
func (h *OrderHandler) Audit(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 0)

	events, err := h.service.AuditHistory(c.Request.Context(), orderID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, events)
}

// CancelLine handles POST /orders/:id/lines/:lineId/cancel.
func (h *OrderHandler) CancelLine(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParamID(c, "lineId")
	if !ok {
		return
	}

	line, err := h.service.CancelLine(c.Request.Context(), orderID, lineID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromLine(line))
}
