package handler

import (
	"net/http"

	"invoicer/internal/middleware"
	"invoicer/internal/service"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	reminderService service.ReminderService
}

func NewReminderHandler(reminderService service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

func (h *ReminderHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.GET("/api/invoices/:id/reminders", auth, h.ListReminders)
	router.POST("/api/invoices/:id/reminders", auth, h.CreateReminder)

	reminders := router.Group("/api/reminders", auth)
	{
		reminders.PUT("/:id", h.UpdateReminder)
		reminders.DELETE("/:id", h.DeleteReminder)
		reminders.POST("/:id/sent", h.MarkSent)
	}
}

// ListReminders returns an invoice's reminders
// @Summary      List reminders
// @Tags         reminders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=[]service.ReminderResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/reminders [get]
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	reminders, err := h.reminderService.ListByInvoice(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, reminders))
}

// CreateReminder creates a reminder for one invoice, with status-based
// defaults for omitted fields
// @Summary      Create reminder
// @Tags         reminders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Invoice ID"
// @Param        payload  body      service.CreateReminderRequest  true  "Create Reminder Payload"
// @Success      201      {object}  response.Response{data=service.ReminderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/{id}/reminders [post]
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req service.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	reminder, err := h.reminderService.CreateReminder(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, reminder))
}

// UpdateReminder edits an unsent reminder
// @Summary      Update reminder
// @Tags         reminders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Reminder ID"
// @Param        payload  body      service.UpdateReminderRequest  true  "Update Reminder Payload"
// @Success      200      {object}  response.Response{data=service.ReminderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/reminders/{id} [put]
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req service.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	reminder, err := h.reminderService.UpdateReminder(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, reminder))
}

// DeleteReminder removes an unsent reminder
// @Summary      Delete reminder
// @Tags         reminders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Reminder ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/reminders/{id} [delete]
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	if err := h.reminderService.DeleteReminder(c.Request.Context(), c.Param("id"), userID); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// MarkSent stamps a reminder as sent, freezing it
// @Summary      Mark reminder sent
// @Tags         reminders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Reminder ID"
// @Success      200  {object}  response.Response{data=service.ReminderResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/reminders/{id}/sent [post]
func (h *ReminderHandler) MarkSent(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	reminder, err := h.reminderService.MarkSent(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, reminder))
}
