package entity

import (
	"bytes"
	"fmt"
	"time"
)

// ProductCard - плоская публичная проекция товара для главной страницы
// Цены берутся из действующей строки цен, рейтинг - среднее всех отзывов
type ProductCard struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	ShortDescription string        `json:"short_description"`
	BasePrice        *float64      `json:"base_price"`
	SalePrice        *float64      `json:"sale_price"`
	Currency         string        `json:"currency"`
	PrimaryImage     *ImageView    `json:"primary_image"`
	Brand            *PartyRef     `json:"brand"`
	Seller           *PartyRef     `json:"seller"`
	Rating           *float64      `json:"rating"`
	ReviewCount      int           `json:"review_count"`
	InStock          bool          `json:"in_stock"`
	Status           ProductStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

type ImageView struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text"`
}

// PartyRef - ссылка на бренд или продавца в публичной проекции
type PartyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FeaturedCategory - категория главной страницы с количеством товаров
type FeaturedCategory struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ImageURL     string `json:"image_url"`
	ProductCount int64  `json:"product_count"`
}

// MainPage - агрегированная выдача главной страницы
type MainPage struct {
	NewProducts        []ProductCard      `json:"new_products"`
	PopularProducts    []ProductCard      `json:"popular_products"`
	FeaturedCategories []FeaturedCategory `json:"featured_categories"`
}

// RatingCount - количество отзывов с конкретной оценкой
type RatingCount struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

// RatingDistribution - распределение оценок, упорядоченное по убыванию (5 -> 1)
// Сериализуется как JSON объект с сохранением порядка ключей,
// стандартный map этого не гарантирует
type RatingDistribution []RatingCount

func (d RatingDistribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rc := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `"%d":%d`, rc.Rating, rc.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ReviewSummary - сводка по всем отзывам товара
// Сводка не зависит от фильтра по оценке: распределение описывает товар целиком
type ReviewSummary struct {
	AverageRating *float64           `json:"average_rating"`
	TotalCount    int64              `json:"total_count"`
	Distribution  RatingDistribution `json:"distribution"`
}

// PageMeta - метаданные пагинации текущей (отфильтрованной) выборки
type PageMeta struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int64 `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
}

// ReviewPageResult - страница отзывов со сводкой
type ReviewPageResult struct {
	Items      []Review      `json:"items"`
	Summary    ReviewSummary `json:"summary"`
	Pagination PageMeta      `json:"pagination"`
}
