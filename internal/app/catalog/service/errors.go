package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrInvalidSort      = errors.New("invalid sort field")
	ErrCategoryCycle    = errors.New("category parent cycle")
)
