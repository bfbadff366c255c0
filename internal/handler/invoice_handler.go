package handler

import (
	"net/http"

	"invoicer/internal/middleware"
	"invoicer/internal/repository"
	"invoicer/internal/service"
	ws "invoicer/internal/websocket"
	"invoicer/pkg/pagination"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	bulkService    service.BulkService
	hub            *ws.Hub
}

func NewInvoiceHandler(invoiceService service.InvoiceService, bulkService service.BulkService, hub *ws.Hub) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		bulkService:    bulkService,
		hub:            hub,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	invoices := router.Group("/api/invoices", auth)
	{
		invoices.POST("", h.CreateInvoice)
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PUT("/:id", h.UpdateInvoice)
		invoices.DELETE("/:id", h.DeleteInvoice)
		invoices.POST("/bulk", h.BulkAction)
		invoices.POST("/:id/file", h.UploadFile)
		invoices.GET("/:id/file", h.GetFileURL)
	}
}

// BulkActionRequest is the caller-facing bulk surface: an action name and the
// invoice ids to apply it to.
type BulkActionRequest struct {
	Action     string   `json:"action" binding:"required"`
	InvoiceIDs []string `json:"invoice_ids" binding:"required"`
}

// CreateInvoice creates a new invoice for the authenticated user
// @Summary      Create invoice
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	h.hub.Notify("invoices.changed", userID.String())
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ListInvoices returns a paginated list of the user's invoices
// @Summary      List invoices
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (draft, sent, paid, overdue)"
// @Param        client  query     string  false  "Partial match on client name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	params := pagination.Parse(c)

	filter := repository.InvoiceListFilter{
		UserID: userID,
		Status: c.Query("status"),
		Client: c.Query("client"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetInvoice returns one invoice by id
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// UpdateInvoice updates invoice fields
// @Summary      Update invoice
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.UpdateInvoiceRequest  true  "Update Invoice Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	h.hub.Notify("invoices.changed", userID.String())
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// DeleteInvoice removes one invoice regardless of status
// @Summary      Delete invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), c.Param("id"), userID); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	h.hub.Notify("invoices.changed", userID.String())
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// BulkAction applies a named action to a set of invoices
// @Summary      Bulk invoice action
// @Description  Applies mark_as_sent, mark_as_paid, mark_as_overdue, create_reminder_upcoming, create_reminder_overdue, create_reminder_thank_you or delete to a set of invoice ids
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      handler.BulkActionRequest  true  "Bulk Action Payload"
// @Success      200      {object}  service.BulkResult
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/bulk [post]
func (h *InvoiceHandler) BulkAction(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	// Malformed ids are skipped here the same way unknown ids are skipped by
	// the store queries: excluded, not an error.
	ids := make([]uuid.UUID, 0, len(req.InvoiceIDs))
	for _, raw := range req.InvoiceIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}

	action := service.ParseBulkAction(req.Action)
	result := h.bulkService.Execute(c.Request.Context(), action, ids, userID)

	if result.Success {
		h.hub.Notify("invoices.changed", userID.String())
	}
	c.JSON(http.StatusOK, result)
}

// UploadFile attaches a document to an invoice
// @Summary      Upload invoice attachment
// @Tags         invoices
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Invoice ID"
// @Param        file  formData  file    true  "Attachment"
// @Success      200   {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400   {object}  response.Response
// @Router       /api/invoices/{id}/file [post]
func (h *InvoiceHandler) UploadFile(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file: "+err.Error()))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unreadable file: "+err.Error()))
		return
	}
	defer file.Close()

	invoice, err := h.invoiceService.AttachFile(
		c.Request.Context(),
		c.Param("id"),
		userID,
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// GetFileURL returns a temporary download URL for the invoice attachment
// @Summary      Get attachment URL
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/file [get]
func (h *InvoiceHandler) GetFileURL(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	url, err := h.invoiceService.AttachmentURL(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"url": url}))
}
