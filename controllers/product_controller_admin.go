package controllers

import (
	"net/http"

	"blockflow/catalog"
	"blockflow/models"

	"github.com/gin-gonic/gin"
)

type AdminProductController struct {
	catalog *catalog.Service
}

func NewAdminProductController(svc *catalog.Service) *AdminProductController {
	return &AdminProductController{catalog: svc}
}

func (h *AdminProductController) Create(c *gin.Context) {
	var req models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "Product created", product)
}

// List returns the catalog together with its size.
func (h *AdminProductController) List(c *gin.Context) {
	ctx := c.Request.Context()
	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Fetch success",
		"total":   len(products),
		"data":    products,
	})
}

func (h *AdminProductController) Update(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, patch)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Product updated", product)
}

func (h *AdminProductController) Delete(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted", "id": id})
}
