package response

import (
	"github.com/gin-gonic/gin"
)

type PaginationMeta struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
}

func NewPaginationMeta(total int64, page, limit int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return PaginationMeta{
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   limit,
	}
}

type ErrorBody struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

type ApiEnvelope struct {
	Success bool            `json:"success"`
	Data    any             `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Meta    *PaginationMeta `json:"meta,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data interface{}, meta *PaginationMeta) {
	c.JSON(status, ApiEnvelope{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details interface{}) {
	c.JSON(status, ApiEnvelope{
		Success: false,
		Message: message,
		Error: &ErrorBody{
			Code:    errorCode,
			Details: details,
		},
	})
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Paginate slices an in-memory result set using page/page_size query values.
// page below 1 is treated as 1 and page_size is clamped to MaxPageSize. A page
// past the end yields an empty slice.
func Paginate[T any](items []T, page, pageSize int) ([]T, PaginationMeta) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total := int64(len(items))
	meta := NewPaginationMeta(total, page, pageSize)

	pages := (len(items) + pageSize - 1) / pageSize
	if page > pages {
		return items[len(items):], meta
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}

type TokenEnvelope struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Data    any    `json:"data,omitempty"`
}

// Token writes the auth response shape: the token sits beside data.
func Token(c *gin.Context, status int, token string, data any) {
	c.JSON(status, TokenEnvelope{
		Success: true,
		Token:   token,
		Data:    data,
	})
}
