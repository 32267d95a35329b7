package handler

import (
	"io"

	partnerapp "github.com/erp/backoffice/internal/application/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// SupplierHandler handles supplier endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// List godoc
// @ID           listSuppliers
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Param        search query string false "Name, contact or phone"
// @Param        active_only query bool false "Only active suppliers"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(name)
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]partner.SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	var filter partnerapp.SupplierListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Create godoc
// @ID           createSupplier
// @Summary      Create a supplier
// @Description  A credit limit of 0 means unlimited credit
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body partner.CreateSupplierRequest true "Supplier"
// @Success      201 {object} APIResponse[partner.SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.supplierService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @ID           getSupplier
// @Summary      Get a supplier
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} APIResponse[partner.SupplierResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/suppliers/{id} [get]
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	resp, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @ID           updateSupplier
// @Summary      Update a supplier
// @Description  Lowering the credit limit below the current balance is rejected
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        request body partner.UpdateSupplierRequest true "Changes"
// @Success      200 {object} APIResponse[partner.SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.supplierService.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteSupplier
// @Summary      Deactivate a supplier
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} APIResponse[partner.SupplierResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	resp, err := h.supplierService.Deactivate(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Statement godoc
// @ID           getSupplierStatement
// @Summary      Supplier statement
// @Description  Orders, payments and totals over a period, as JSON or an xlsx workbook
// @Tags         suppliers
// @Produce      json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        from query string false "Period start" format(date)
// @Param        to query string false "Period end, inclusive" format(date)
// @Param        format query string false "Output format" Enums(json, xlsx) default(json)
// @Success      200 {object} APIResponse[partner.StatementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/suppliers/{id}/statement [get]
func (h *SupplierHandler) Statement(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.StatementRequest
	if !h.BindQuery(c, &req) {
		return
	}
	stmt, err := h.supplierService.Statement(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if req.Format != "xlsx" {
		h.Success(c, stmt)
		return
	}
	h.Attachment(c, partnerapp.StatementFilename(&stmt.Supplier, shared.Now()), XLSXContentType, func(w io.Writer) error {
		return partnerapp.WriteStatementXLSX(w, stmt)
	})
}

// Reconcile godoc
// @ID           reconcileSupplierBalance
// @Summary      Reconcile a supplier balance
// @Description  Recompute the balance from open purchase orders and report the drift (Boss only)
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} APIResponse[partner.ReconcileResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /po/suppliers/{id}/reconcile [post]
func (h *SupplierHandler) Reconcile(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	resp, err := h.supplierService.ReconcileBalance(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
