package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrUnknownSortField возвращается когда поле сортировки отсутствует в allow-list
var ErrUnknownSortField = errors.New("unknown sort field")

// SortField - одна пара (поле, направление) из строки сортировки
type SortField struct {
	Field     string
	Direction string // "asc" или "desc"
}

// ParseSortSpec разбирает строку вида "created_at:desc,name:asc" в список пар
// Грамматика проверяется на границе HTTP, здесь строка считается валидной.
// Неизвестное направление трактуется как asc
func ParseSortSpec(spec string) []SortField {
	if spec == "" {
		return nil
	}

	parts := strings.Split(spec, ",")
	fields := make([]SortField, 0, len(parts))
	for _, part := range parts {
		field, direction, _ := strings.Cut(part, ":")
		if direction != "desc" {
			direction = "asc"
		}
		fields = append(fields, SortField{Field: field, Direction: direction})
	}

	return fields
}

// Allow-list сортируемых колонок по сущностям.
// Строка от клиента попадает в ORDER BY только через эти таблицы
var (
	productSortColumns = map[string]string{
		"created_at": "products.created_at",
		"updated_at": "products.updated_at",
		"name":       "products.name",
		"slug":       "products.slug",
		"status":     "products.status",
	}

	reviewSortColumns = map[string]string{
		"created_at":    "reviews.created_at",
		"updated_at":    "reviews.updated_at",
		"rating":        "reviews.rating",
		"helpful_votes": "reviews.helpful_votes",
	}
)

// orderClause резолвит пары сортировки в ORDER BY через allow-list колонок
// Порядок пар сохраняется: первая пара - первичный ключ сортировки
func orderClause(fields []SortField, columns map[string]string) (string, error) {
	if len(fields) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(fields))
	for _, f := range fields {
		column, ok := columns[f.Field]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownSortField, f.Field)
		}
		direction := "ASC"
		if f.Direction == "desc" {
			direction = "DESC"
		}
		clauses = append(clauses, column+" "+direction)
	}

	return strings.Join(clauses, ", "), nil
}

// ProductOrderClause строит ORDER BY для товаров
func ProductOrderClause(fields []SortField) (string, error) {
	return orderClause(fields, productSortColumns)
}

// ReviewOrderClause строит ORDER BY для отзывов
func ReviewOrderClause(fields []SortField) (string, error) {
	return orderClause(fields, reviewSortColumns)
}

// PageWindow - окно пагинации
// Нулевое значение означает что пагинация выключена: запрос вернет все строки,
// total при этом считается отдельным запросом
type PageWindow struct {
	Page    int
	PerPage int
}

// NewPageWindow строит окно из опциональных параметров запроса
// Отсутствие любого из них отключает пагинацию целиком
func NewPageWindow(page, perPage *int) PageWindow {
	if page == nil || perPage == nil {
		return PageWindow{}
	}
	return PageWindow{Page: *page, PerPage: *perPage}
}

func (w PageWindow) Enabled() bool {
	return w.Page >= 1 && w.PerPage >= 1
}

func (w PageWindow) Offset() int {
	return (w.Page - 1) * w.PerPage
}

func (w PageWindow) Limit() int {
	return w.PerPage
}

// Apply накладывает LIMIT/OFFSET на запрос, no-op если окно выключено
func (w PageWindow) Apply(db *gorm.DB) *gorm.DB {
	if !w.Enabled() {
		return db
	}
	return db.Offset(w.Offset()).Limit(w.Limit())
}
