package handler

import (
	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// SalesOrderHandler handles sales endpoints
type SalesOrderHandler struct {
	BaseHandler
	salesService *tradeapp.SalesService
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(salesService *tradeapp.SalesService) *SalesOrderHandler {
	return &SalesOrderHandler{salesService: salesService}
}

// Create godoc
// @ID           createSalesOrder
// @Summary      Record a sale
// @Description  Depletes stock FIFO and prices each line from the lots it drew. Send an Idempotency-Key to make retries safe.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body trade.CreateSaleRequest true "Sale"
// @Success      201 {object} APIResponse[trade.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [post]
func (h *SalesOrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.salesService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @ID           listSalesOrders
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        payment_status query string false "Payment status" Enums(Pending, Partial, Cleared)
// @Param        search query string false "Order number or customer"
// @Param        from query string false "Sold on or after" format(date)
// @Param        to query string false "Sold on or before" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]trade.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *SalesOrderHandler) List(c *gin.Context) {
	var filter tradeapp.SaleListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.salesService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getSalesOrder
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sales order ID" format(uuid)
// @Success      200 {object} APIResponse[trade.SaleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *SalesOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	resp, err := h.salesService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
