package handler

import "github.com/gofiber/fiber/v2"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pagination reads page/limit query params and converts them to a
// limit/offset window, clamping out-of-range values.
func pagination(c *fiber.Ctx) (limit, offset, page int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	limit = c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return limit, (page - 1) * limit, page
}

// paginated wraps one page of results with the metadata block clients use
// to drive paging.
func paginated(data any, total int64, page, limit int) fiber.Map {
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return fiber.Map{
		"success": true,
		"data":    data,
		"meta": fiber.Map{
			"totalItems":  total,
			"totalPages":  totalPages,
			"currentPage": page,
			"perPage":     limit,
		},
	}
}
