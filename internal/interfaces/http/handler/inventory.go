package handler

import (
	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler handles stock lot endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// AddStock godoc
// @ID           addProductStock
// @Summary      Add a stock lot
// @Description  Record a manually entered lot; the selling price defaults to cost plus markup
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body inventory.AddStockRequest true "Lot"
// @Success      201 {object} APIResponse[inventory.LotResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/add-stock [post]
func (h *InventoryHandler) AddStock(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AddStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.inventoryService.AddLot(c.Request.Context(), actor(c), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Deplete godoc
// @ID           depleteProductStock
// @Summary      Take stock out oldest lot first
// @Description  Removes quantity from the product's unexpired lots in FIFO order, for goods leaving outside a recorded sale. Fails whole when stock is short.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        Idempotency-Key header string false "Replay key"
// @Param        request body inventory.DepleteRequest true "Quantity"
// @Success      200 {object} APIResponse[inventory.DepletionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/deplete [post]
func (h *InventoryHandler) Deplete(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.DepleteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.inventoryService.DepleteForSale(c.Request.Context(), actor(c), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Batches godoc
// @ID           listProductBatches
// @Summary      List a product's lots
// @Description  Lots in FIFO order, filtered by status
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        status query string false "Lot status" Enums(active, inactive, expired, all)
// @Success      200 {object} APIResponse[[]inventory.LotResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/batches [get]
func (h *InventoryHandler) Batches(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	resp, err := h.inventoryService.QueryBatches(c.Request.Context(), productID, c.Query("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Search godoc
// @ID           searchBatches
// @Summary      Search lots
// @Description  Cross-product lot lookup by batch number, purchase order, product name or expiry window
// @Tags         inventory
// @Produce      json
// @Param        batch_number query string false "Batch number prefix"
// @Param        po_id query string false "Purchase order ID" format(uuid)
// @Param        product_name query string false "Product name"
// @Param        expiry_before query string false "Expiry before" format(date)
// @Param        expiry_after query string false "Expiry after" format(date)
// @Param        active_only query bool false "Only active lots"
// @Param        limit query int false "Maximum results" maximum(500)
// @Success      200 {object} APIResponse[[]inventory.LotResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/batches/search [get]
func (h *InventoryHandler) Search(c *gin.Context) {
	var req inventoryapp.SearchRequest
	if !h.BindQuery(c, &req) {
		return
	}
	resp, err := h.inventoryService.Search(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Expiring godoc
// @ID           listExpiringBatches
// @Summary      Lots expiring soon
// @Description  Active lots with stock that expire within the window
// @Tags         inventory
// @Produce      json
// @Param        days query int false "Window in days" default(30)
// @Success      200 {object} APIResponse[[]inventory.LotResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/batches/expiring [get]
func (h *InventoryHandler) Expiring(c *gin.Context) {
	days, ok := h.QueryInt(c, "days", 0)
	if !ok {
		return
	}
	resp, err := h.inventoryService.Expiring(c.Request.Context(), days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Expired godoc
// @ID           listExpiredBatches
// @Summary      Expired lots still on record
// @Description  Active lots with stock whose expiry date has passed. They are excluded from stock totals and sales.
// @Tags         inventory
// @Produce      json
// @Success      200 {object} APIResponse[[]inventory.LotResponse]
// @Security     BearerAuth
// @Router       /products/batches/expired [get]
func (h *InventoryHandler) Expired(c *gin.Context) {
	resp, err := h.inventoryService.Expired(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Adjust godoc
// @ID           adjustBatch
// @Summary      Adjust a lot after a count
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        lotId path string true "Lot ID" format(uuid)
// @Param        request body inventory.AdjustLotRequest true "Counted quantity"
// @Success      200 {object} APIResponse[inventory.LotResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/batches/{lotId}/adjust [put]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	lotID, ok := h.ParamID(c, "lotId")
	if !ok {
		return
	}
	var req inventoryapp.AdjustLotRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.inventoryService.AdjustLot(c.Request.Context(), actor(c), lotID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Retire godoc
// @ID           retireBatch
// @Summary      Retire a lot
// @Description  Deactivate a lot so FIFO never draws from it again
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        lotId path string true "Lot ID" format(uuid)
// @Param        request body inventory.RetireLotRequest true "Reason"
// @Success      200 {object} APIResponse[inventory.LotResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/batches/{lotId}/retire [put]
func (h *InventoryHandler) Retire(c *gin.Context) {
	lotID, ok := h.ParamID(c, "lotId")
	if !ok {
		return
	}
	var req inventoryapp.RetireLotRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.inventoryService.RetireLot(c.Request.Context(), actor(c), lotID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
