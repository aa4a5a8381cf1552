package controllers

import (
	"strconv"
	"strings"

	"blockflow/catalog"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductController serves the public catalog reads.
type ProductController struct {
	catalog *catalog.Service
}

func NewProductController(svc *catalog.Service) *ProductController {
	return &ProductController{catalog: svc}
}

// listParams are the query string inputs shared by the catalog reads.
type listParams struct {
	Keyword  string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortBy   string
	Page     int
	Size     int
}

func parseListParams(c *gin.Context) (listParams, bool) {
	p := listParams{
		Keyword:  c.Query("keyword"),
		Category: strings.TrimSpace(c.Query("category")),
		SortBy:   c.DefaultQuery("sortBy", catalog.SortDefault),
		Size:     catalog.DefaultPageSize,
	}

	var err error
	if raw := c.Query("page"); raw != "" {
		if p.Page, err = strconv.Atoi(raw); err != nil {
			invalid(c, "page", "must be an integer")
			return p, false
		}
	}

	rawSize := c.Query("limit")
	if rawSize == "" {
		rawSize = c.Query("size")
	}
	if rawSize != "" {
		if p.Size, err = strconv.Atoi(rawSize); err != nil {
			invalid(c, "limit", "must be an integer")
			return p, false
		}
	}

	if p.MinPrice, err = decimalParam(c, "minPrice"); err != nil {
		invalid(c, "minPrice", "must be a decimal number")
		return p, false
	}
	if p.MaxPrice, err = decimalParam(c, "maxPrice"); err != nil {
		invalid(c, "maxPrice", "must be a decimal number")
		return p, false
	}
	return p, true
}

func decimalParam(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GET /api/products
func (h *ProductController) List(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", products)
}

// GET /api/products/:id
func (h *ProductController) Get(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", product)
}

// POST /api/products/:id/view
func (h *ProductController) View(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	product, err := h.catalog.ViewProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "View recorded", product)
}

// GET /api/products/search/keyword returns every match without paging.
func (h *ProductController) SearchByKeyword(c *gin.Context) {
	products, err := h.catalog.SearchByKeyword(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", products)
}

// GET /api/products/search
func (h *ProductController) Search(c *gin.Context) {
	p, valid := parseListParams(c)
	if !valid {
		return
	}
	page, err := h.catalog.Search(c.Request.Context(), p.Keyword, p.Page, p.Size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", page)
}

// GET /api/products/filter
func (h *ProductController) Filter(c *gin.Context) {
	p, valid := parseListParams(c)
	if !valid {
		return
	}
	page, err := h.catalog.FilterByCategory(c.Request.Context(), p.Category, p.MinPrice, p.MaxPrice, p.Page, p.Size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", page)
}

// GET /api/products/sort
func (h *ProductController) Sort(c *gin.Context) {
	p, valid := parseListParams(c)
	if !valid {
		return
	}
	page, err := h.catalog.SortProducts(c.Request.Context(), p.SortBy, p.Page, p.Size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", page)
}

// GET /api/products/advanced-search
func (h *ProductController) AdvancedSearch(c *gin.Context) {
	p, valid := parseListParams(c)
	if !valid {
		return
	}
	page, err := h.catalog.AdvancedSearch(c.Request.Context(), catalog.SearchParams{
		Keyword:  p.Keyword,
		Category: p.Category,
		MinPrice: p.MinPrice,
		MaxPrice: p.MaxPrice,
		SortKey:  p.SortBy,
		Page:     p.Page,
		Size:     p.Size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", page)
}

// GET /api/products/categories
func (h *ProductController) Categories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", categories)
}

// GET /api/products/available
func (h *ProductController) Available(c *gin.Context) {
	products, err := h.catalog.AvailableProducts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", products)
}
