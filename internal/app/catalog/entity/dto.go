package entity

import "time"

// ErrorCode - код ошибки в теле ответа
// Фиксированная таблица кодов определяет HTTP статус ответа
type ErrorCode string

const (
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "RESOURCE_NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// SuccessResponse - единый конверт успешного ответа
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// ErrorResponse - единый конверт ошибки
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ListProductsQuery - параметры листинга товаров
// Page и PerPage указатели: отсутствие любого из них отключает пагинацию,
// полный список возвращается вместе с total
type ListProductsQuery struct {
	Page     *int     `form:"page" validate:"omitempty,min=1"`
	PerPage  *int     `form:"perPage" validate:"omitempty,min=1,max=100"`
	Sort     string   `form:"sort"`
	Status   string   `form:"status" validate:"omitempty,oneof=ACTIVE OUT_OF_STOCK DELETED"`
	MinPrice *float64 `form:"minPrice" validate:"omitempty,min=0"`
	MaxPrice *float64 `form:"maxPrice" validate:"omitempty,min=0"`
	Category []int64  `form:"-"` // нормализуется в handler: csv или повторяющийся параметр
	Seller   *int64   `form:"seller" validate:"omitempty,min=1"`
	Brand    *int64   `form:"brand" validate:"omitempty,min=1"`
	InStock  *bool    `form:"inStock"`
	Search   string   `form:"search"`
}

// ListReviewsQuery - параметры листинга отзывов товара
type ListReviewsQuery struct {
	Page    int    `form:"page,default=1" validate:"min=1"`
	PerPage int    `form:"perPage,default=10" validate:"min=1,max=100"`
	Sort    string `form:"sort,default=created_at:desc"`
	Rating  *int   `form:"rating" validate:"omitempty,min=1,max=5"`
}

// CategoryProductsQuery - параметры листинга товаров категории
type CategoryProductsQuery struct {
	Page                 int    `form:"page,default=1" validate:"min=1"`
	PerPage              int    `form:"perPage,default=10" validate:"min=1,max=100"`
	Sort                 string `form:"sort,default=created_at:desc"`
	IncludeSubcategories bool   `form:"includeSubcategories,default=true"`
}

type ProductCategoryLink struct {
	CategoryID int64 `json:"category_id" validate:"required,min=1"`
	IsPrimary  bool  `json:"is_primary"`
}

type CreateProductRequest struct {
	Name             string                `json:"name" validate:"required,min=2,max=200"`
	Slug             string                `json:"slug" validate:"required,min=2,max=200"`
	ShortDescription string                `json:"shortDescription" validate:"required,max=500"`
	FullDescription  string                `json:"fullDescription" validate:"required"`
	SellerID         int64                 `json:"sellerId" validate:"required,min=1"`
	BrandID          int64                 `json:"brandId" validate:"required,min=1"`
	Status           ProductStatus         `json:"status" validate:"required,oneof=ACTIVE OUT_OF_STOCK DELETED"`
	Categories       []ProductCategoryLink `json:"categories" validate:"omitempty,dive"`
}

type UpdateProductRequest struct {
	Name             string        `json:"name" validate:"omitempty,min=2,max=200"`
	Slug             string        `json:"slug" validate:"omitempty,min=2,max=200"`
	ShortDescription string        `json:"shortDescription" validate:"omitempty,max=500"`
	FullDescription  string        `json:"fullDescription" validate:"omitempty"`
	Status           ProductStatus `json:"status" validate:"omitempty,oneof=ACTIVE OUT_OF_STOCK DELETED"`
}

type CreateReviewRequest struct {
	Rating           int    `json:"rating" validate:"required,min=1,max=5"`
	Title            string `json:"title" validate:"required,max=200"`
	Content          string `json:"content" validate:"required"`
	VerifiedPurchase bool   `json:"verified_purchase"`
	UserID           int64  `json:"userId" validate:"required,min=1"`
}

type UpdateReviewRequest struct {
	Rating  *int   `json:"rating" validate:"omitempty,min=1,max=5"`
	Title   string `json:"title" validate:"omitempty,max=200"`
	Content string `json:"content" validate:"omitempty"`
	UserID  *int64 `json:"userId" validate:"omitempty,min=1"`
}

type CreateCategoryRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Slug     string `json:"slug" validate:"required,min=2,max=100"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,min=1"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type UpdateCategoryRequest struct {
	Name     string `json:"name" validate:"omitempty,min=2,max=100"`
	Slug     string `json:"slug" validate:"omitempty,min=2,max=100"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,min=1"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

// ProductListResult - страница листинга товаров
// Total всегда считается по фильтру независимо от пагинации;
// Page/PerPage присутствуют только когда пагинация применялась
type ProductListResult struct {
	Total   int64     `json:"total"`
	Page    *int      `json:"page,omitempty"`
	PerPage *int      `json:"perPage,omitempty"`
	Data    []Product `json:"data"`
}

// ProductUpdateResult - минимальный ответ на обновление товара
type ProductUpdateResult struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CategoryListResult struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}
