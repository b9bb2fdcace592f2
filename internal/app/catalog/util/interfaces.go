package util

import (
	"context"
	"time"

	"kmarket/internal/app/catalog/entity"
)

// CatalogCache интерфейс для работы с Redis кешем
// Используется для dependency injection и упрощения тестирования.
// Промах кеша возвращается как (nil, nil), ошибкой считается только сбой Redis
type CatalogCache interface {
	GetCategories(ctx context.Context, level int) ([]entity.Category, error)
	SetCategories(ctx context.Context, level int, categories []entity.Category, ttl time.Duration) error
	InvalidateCategories(ctx context.Context) error
	GetMainPage(ctx context.Context) (*entity.MainPage, error)
	SetMainPage(ctx context.Context, page *entity.MainPage, ttl time.Duration) error
	InvalidateMainPage(ctx context.Context) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
