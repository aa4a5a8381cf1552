package controllers

import (
	"net/http"

	"blockflow/models"
	"blockflow/orders"

	"github.com/gin-gonic/gin"
)

// AdminOrderController drives order status changes from the back office.
type AdminOrderController struct {
	orders *orders.Service
}

func NewAdminOrderController(svc *orders.Service) *AdminOrderController {
	return &AdminOrderController{orders: svc}
}

var adminCaller = orders.Caller{Admin: true}

func (h *AdminOrderController) List(c *gin.Context) {
	list, err := h.orders.List(c.Request.Context(), adminCaller)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", list)
}

func (h *AdminOrderController) Get(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), adminCaller, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", order)
}

// PUT /api/admin/orders/:id/status
func (h *AdminOrderController) UpdateStatus(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	var input struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	h.setStatus(c, id, input.Status, "Order status updated")
}

// PUT /api/admin/orders/:id/cancel
func (h *AdminOrderController) Cancel(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	h.setStatus(c, id, models.StatusCancelled, "Order canceled")
}

func (h *AdminOrderController) setStatus(c *gin.Context, id int64, status models.OrderStatus, message string) {
	order, err := h.orders.Update(c.Request.Context(), adminCaller, id, models.OrderPatch{Status: &status})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, message, order)
}
