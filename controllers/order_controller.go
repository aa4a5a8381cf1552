package controllers

import (
	"net/http"

	"blockflow/models"
	"blockflow/orders"

	"github.com/gin-gonic/gin"
)

// OrderController serves /api/orders. Non-admin callers only see their own orders.
type OrderController struct {
	orders *orders.Service
}

func NewOrderController(svc *orders.Service) *OrderController {
	return &OrderController{orders: svc}
}

func (h *OrderController) Create(c *gin.Context) {
	claims, who, found := caller(c)
	if !found {
		return
	}

	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.CustomerName == "" {
		req.CustomerName = claims.Username
	}

	order, err := h.orders.Create(c.Request.Context(), who, req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "Order created", order)
}

func (h *OrderController) List(c *gin.Context) {
	_, who, found := caller(c)
	if !found {
		return
	}
	list, err := h.orders.List(c.Request.Context(), who)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", list)
}

func (h *OrderController) Get(c *gin.Context) {
	_, who, found := caller(c)
	if !found {
		return
	}
	id, valid := pathID(c)
	if !valid {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), who, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", order)
}

func (h *OrderController) Update(c *gin.Context) {
	_, who, found := caller(c)
	if !found {
		return
	}
	id, valid := pathID(c)
	if !valid {
		return
	}

	var patch models.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := h.orders.Update(c.Request.Context(), who, id, patch)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Order updated", order)
}

func (h *OrderController) Delete(c *gin.Context) {
	_, who, found := caller(c)
	if !found {
		return
	}
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := h.orders.Delete(c.Request.Context(), who, id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted", "id": id})
}
