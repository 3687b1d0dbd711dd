package utils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Page is the limit/offset pagination envelope every list endpoint returns.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// PageParams reads limit/offset query params with sane bounds.
func PageParams(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 10)
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// NewPage assembles the envelope, deriving next/previous links from the
// request path and the window that was just served.
func NewPage(c *fiber.Ctx, count int64, limit, offset int, results interface{}) Page {
	page := Page{Count: count, Results: results}

	base := c.BaseURL() + c.Path()
	if int64(offset+limit) < count {
		next := fmt.Sprintf("%s?limit=%d&offset=%d", base, limit, offset+limit)
		page.Next = &next
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		previous := fmt.Sprintf("%s?limit=%d&offset=%d", base, limit, prev)
		page.Previous = &previous
	}
	return page
}

// SendPage sends a paginated list response.
func SendPage(c *fiber.Ctx, count int64, limit, offset int, results interface{}) error {
	return c.Status(fiber.StatusOK).JSON(NewPage(c, count, limit, offset, results))
}
