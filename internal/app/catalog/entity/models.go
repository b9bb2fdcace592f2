package entity

import "time"

// ProductStatus - статус товара в каталоге
type ProductStatus string

const (
	StatusActive     ProductStatus = "ACTIVE"
	StatusOutOfStock ProductStatus = "OUT_OF_STOCK"
	StatusDeleted    ProductStatus = "DELETED"
)

// Product представляет товар каталога со всеми связанными сущностями
// Product является корнем агрегата: цены, категории, группы опций,
// изображения и отзывы живут и умирают вместе с товаром
type Product struct {
	ID               int64         `json:"id" gorm:"primaryKey"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	ShortDescription string        `json:"short_description"`
	FullDescription  string        `json:"full_description"`
	Status           ProductStatus `json:"status"`
	SellerID         int64         `json:"seller_id"`
	BrandID          int64         `json:"brand_id"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	Seller       *Seller           `json:"seller,omitempty"`
	Brand        *Brand            `json:"brand,omitempty"`
	Prices       []Price           `json:"prices,omitempty"`
	Categories   []ProductCategory `json:"categories,omitempty"`
	OptionGroups []OptionGroup     `json:"option_groups,omitempty"`
	Images       []ProductImage    `json:"images,omitempty"`
	Reviews      []Review          `json:"reviews,omitempty"`
}

// CurrentPrice возвращает действующую цену товара
// Действующая цена - строка с наименьшим id (история цен хранится по возрастанию id)
// Prices должны быть загружены с сортировкой id ASC
func (p *Product) CurrentPrice() *Price {
	if len(p.Prices) == 0 {
		return nil
	}
	return &p.Prices[0]
}

// InStock возвращает true если хотя бы одна опция товара имеет остаток > 0
// Товар без групп опций считается отсутствующим на складе
func (p *Product) InStock() bool {
	for _, og := range p.OptionGroups {
		for _, opt := range og.Options {
			if opt.Stock > 0 {
				return true
			}
		}
	}
	return false
}

// Category представляет категорию товаров
// Категории образуют дерево через ParentID (nil у корня), Level - глубина узла
type Category struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Level     int        `json:"level"`
	ParentID  *int64     `json:"parent_id"`
	ImageURL  string     `json:"image_url"`
	CreatedAt time.Time  `json:"created_at"`
	Children  []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

// ProductCategory - связь товара с категорией (many-to-many)
type ProductCategory struct {
	ProductID  int64     `json:"product_id" gorm:"primaryKey"`
	CategoryID int64     `json:"category_id" gorm:"primaryKey"`
	IsPrimary  bool      `json:"is_primary"`
	Category   *Category `json:"category,omitempty"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}

// Price представляет строку истории цен товара
type Price struct {
	ID        int64   `json:"id" gorm:"primaryKey"`
	ProductID int64   `json:"product_id"`
	BasePrice float64 `json:"base_price"`
	SalePrice float64 `json:"sale_price"`
	CostPrice float64 `json:"cost_price"`
	Currency  string  `json:"currency"`
	TaxRate   float64 `json:"tax_rate"`
}

// OptionGroup - группа покупаемых вариантов товара (цвет, размер и т.д.)
type OptionGroup struct {
	ID           int64    `json:"id" gorm:"primaryKey"`
	ProductID    int64    `json:"product_id"`
	Name         string   `json:"name"`
	DisplayOrder int      `json:"display_order"`
	Options      []Option `json:"options,omitempty"`
}

// Option - конкретный вариант с остатком на складе
type Option struct {
	ID              int64   `json:"id" gorm:"primaryKey"`
	OptionGroupID   int64   `json:"option_group_id"`
	Name            string  `json:"name"`
	AdditionalPrice float64 `json:"additional_price"`
	SKU             string  `json:"sku" gorm:"column:sku"`
	Stock           int     `json:"stock"`
	DisplayOrder    int     `json:"display_order"`
}

// ProductImage - изображение товара; IsPrimary помечает главное изображение
type ProductImage struct {
	ID           int64  `json:"id" gorm:"primaryKey"`
	ProductID    int64  `json:"product_id"`
	URL          string `json:"url"`
	AltText      string `json:"alt_text"`
	IsPrimary    bool   `json:"is_primary"`
	DisplayOrder int    `json:"display_order"`
}

func (ProductImage) TableName() string {
	return "product_images"
}

// Review представляет отзыв покупателя о товаре
// UserID nullable: автор может быть удален, отзыв остается
type Review struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	ProductID        int64     `json:"product_id"`
	UserID           *int64    `json:"user_id"`
	Rating           int       `json:"rating"` // Оценка от 1 до 5
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	HelpfulVotes     int       `json:"helpful_votes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	User *User `json:"user"`
}

// User - публичные поля автора отзыва
type User struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Seller - продавец товара
type Seller struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

// Brand - бренд товара
type Brand struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ReviewEvent представляет событие создания отзыва для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED
	ReviewID  int64     `json:"review_id"`
	ProductID int64     `json:"product_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}
