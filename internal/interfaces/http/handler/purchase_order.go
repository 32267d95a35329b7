package handler

import (
	"context"
	"io"

	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *tradeapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *tradeapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// List godoc
// @ID           listPurchaseOrders
// @Summary      List purchase orders
// @Description  Paginated purchase orders, newest first by default
// @Tags         purchase-orders
// @Produce      json
// @Param        status query string false "Order status" Enums(Draft, Submitted, Approved, Ordered, Partially Received, Received, Cancelled)
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        payment_status query string false "Payment status" Enums(Unpaid, Partial, Paid)
// @Param        search query string false "PO number or notes"
// @Param        from query string false "Created on or after" format(date)
// @Param        to query string false "Created on or before" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]trade.POResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var filter tradeapp.POListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Create godoc
// @ID           createPurchaseOrder
// @Summary      Create a purchase order
// @Description  Creates a Draft order; lines for the same product are merged
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        request body trade.CreatePORequest true "Purchase order"
// @Success      201 {object} APIResponse[trade.POResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreatePORequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @ID           getPurchaseOrder
// @Summary      Get a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[trade.POResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	resp, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

type transitionFunc func(ctx context.Context, actor identity.Actor, id uuid.UUID) (*tradeapp.POResponse, error)

func (h *PurchaseOrderHandler) transition(c *gin.Context, fn transitionFunc) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	resp, err := fn(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Submit godoc
// @ID           submitPurchaseOrder
// @Summary      Submit a purchase order
// @Description  Draft to Submitted; Managers may only submit their own orders
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[trade.POResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/{id}/submit [put]
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	h.transition(c, h.orderService.Submit)
}

// Approve godoc
// @ID           approvePurchaseOrder
// @Summary      Approve a purchase order
// @Description  Submitted to Approved (Boss only); the grand total is charged against supplier credit
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[trade.POResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/{id}/approve [put]
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	h.transition(c, h.orderService.Approve)
}

// MarkOrdered godoc
// @ID           orderPurchaseOrder
// @Summary      Mark a purchase order as ordered
// @Description  Approved to Ordered; sets the payment due date from the terms
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[trade.POResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/{id}/order [put]
func (h *PurchaseOrderHandler) MarkOrdered(c *gin.Context) {
	h.transition(c, h.orderService.MarkOrdered)
}

// Receive godoc
// @ID           receivePurchaseOrder
// @Summary      Receive goods
// @Description  Receive quantities against order lines; each line becomes a stock lot
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body trade.ReceiveRequest true "Receipt"
// @Success      200 {object} APIResponse[trade.POResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/{id}/receive [put]
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.ReceiveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.Receive(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @ID           cancelPurchaseOrder
// @Summary      Cancel a purchase order
// @Description  Releases the unpaid balance from supplier credit and lists batches already received
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body trade.CancelRequest true "Reason"
// @Success      200 {object} APIResponse[trade.CancelResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/{id}/cancel [put]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.Cancel(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddPayment godoc
// @ID           addPurchaseOrderPayment
// @Summary      Record a payment
// @Description  Pay against the balance due. Send an Idempotency-Key to make retries safe.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body trade.PaymentRequest true "Payment"
// @Success      201 {object} APIResponse[finance.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/{id}/payment [post]
func (h *PurchaseOrderHandler) AddPayment(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.AddPayment(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Payments godoc
// @ID           listPurchaseOrderPayments
// @Summary      List payments
// @Description  Payments recorded against the order, oldest first
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[[]finance.PaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/{id}/payments [get]
func (h *PurchaseOrderHandler) Payments(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	resp, err := h.orderService.Payments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DashboardStats godoc
// @ID           getPurchaseOrderStats
// @Summary      Purchasing statistics
// @Description  Counts by status, overdue orders and value totals
// @Tags         purchase-orders
// @Produce      json
// @Success      200 {object} APIResponse[trade.PurchaseOrderStats]
// @Security     BearerAuth
// @Router       /po/dashboard/stats [get]
func (h *PurchaseOrderHandler) DashboardStats(c *gin.Context) {
	resp, err := h.orderService.DashboardStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Export godoc
// @ID           exportPurchaseOrders
// @Summary      Export purchase orders
// @Description  Every order matching the list filters as an xlsx workbook
// @Tags         purchase-orders
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        status query string false "Order status"
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        payment_status query string false "Payment status"
// @Param        from query string false "Created on or after" format(date)
// @Param        to query string false "Created on or before" format(date)
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/export [get]
func (h *PurchaseOrderHandler) Export(c *gin.Context) {
	var filter tradeapp.POListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	rows, err := h.orderService.ExportRows(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Attachment(c, tradeapp.ExportFilename(shared.Now()), XLSXContentType, func(w io.Writer) error {
		return tradeapp.WritePOExportXLSX(w, rows)
	})
}
