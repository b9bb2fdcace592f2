package repository

import (
	"gorm.io/gorm"
)

// ProductFilter - набор опциональных условий листинга товаров
// Независимо заданные условия соединяются через AND.
// Пустой фильтр совпадает со всеми товарами, включая DELETED:
// исключение удаленных - ответственность вызывающего (status=ACTIVE)
type ProductFilter struct {
	Status      string
	MinPrice    *float64
	MaxPrice    *float64
	CategoryIDs []int64
	SellerID    *int64
	BrandID     *int64
	InStock     bool // false - no-op
	Search      string
}

// Apply накладывает условия фильтра на запрос по таблице products
// Один и тот же фильтр используется и для count, и для выборки страницы
func (f ProductFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("products.status = ?", f.Status)
	}

	// Ценовые границы применяются к действующей строке цен товара
	// (строка с минимальным id), обе границы - к одной и той же строке
	if f.MinPrice != nil || f.MaxPrice != nil {
		cond := "EXISTS (SELECT 1 FROM prices cur WHERE cur.product_id = products.id" +
			" AND cur.id = (SELECT MIN(p.id) FROM prices p WHERE p.product_id = products.id)"
		args := make([]interface{}, 0, 2)
		if f.MinPrice != nil {
			cond += " AND cur.base_price >= ?"
			args = append(args, *f.MinPrice)
		}
		if f.MaxPrice != nil {
			cond += " AND cur.base_price <= ?"
			args = append(args, *f.MaxPrice)
		}
		cond += ")"
		db = db.Where(cond, args...)
	}

	if len(f.CategoryIDs) > 0 {
		db = db.Where(
			"EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = products.id AND pc.category_id IN ?)",
			f.CategoryIDs,
		)
	}

	if f.SellerID != nil {
		db = db.Where("products.seller_id = ?", *f.SellerID)
	}

	if f.BrandID != nil {
		db = db.Where("products.brand_id = ?", *f.BrandID)
	}

	if f.InStock {
		db = db.Where(
			"EXISTS (SELECT 1 FROM option_groups og JOIN options o ON o.option_group_id = og.id" +
				" WHERE og.product_id = products.id AND o.stock > 0)",
		)
	}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		db = db.Where(
			"(products.name LIKE ? OR products.short_description LIKE ? OR products.full_description LIKE ?)",
			pattern, pattern, pattern,
		)
	}

	return db
}
