package catalog

import (
	"math"

	"blockflow/models"
)

// TotalPages is ceil(total/size) using integer arithmetic.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Bounds returns the [start, end) window of a page over total items,
// clamped so that a page past the end yields an empty window.
func Bounds(total, page, size int) (int, int) {
	start := total
	if size > 0 && page <= total/size {
		start = page * size
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}

// Paginate slices a fully materialised result set into one page.
func Paginate(all []models.Product, page, size int) models.Page {
	start, end := Bounds(len(all), page, size)
	return NewPage(all[start:end], page, size, int64(len(all)))
}

// NewPage assembles the envelope for items already cut to one page.
func NewPage(items []models.Product, page, size int, total int64) models.Page {
	if items == nil {
		items = []models.Product{}
	}
	return models.Page{
		Products:     items,
		CurrentPage:  page,
		ItemsPerPage: size,
		TotalItems:   total,
		TotalPages:   TotalPages(total, size),
	}
}

// maxPage is the largest page index whose window end, (page+1)*size, fits in an int.
func maxPage(size int) int {
	return (math.MaxInt - size) / size
}

func validatePaging(page, size int) error {
	ve := &models.ValidationError{Fields: map[string]string{}}
	if page < 0 {
		ve.Fields["page"] = "cannot be negative"
	}
	if size <= 0 {
		ve.Fields["limit"] = "must be positive"
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}
