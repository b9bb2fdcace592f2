package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kmarket/internal/app/catalog/entity"
	"kmarket/pkg/metrics"
)

const (
	categoriesKeyPrefix  = "categories:level:"
	categoriesKeyPattern = "categories:level:*"
	mainPageKey          = "mainpage:v1"
)

// RedisClient - клиент кеширования каталога
// Кеширует списки категорий по уровням и собранную главную страницу
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

func categoriesKey(level int) string {
	return fmt.Sprintf("%s%d", categoriesKeyPrefix, level)
}

func (r *RedisClient) GetCategories(ctx context.Context, level int) ([]entity.Category, error) {
	data, err := r.client.Get(ctx, categoriesKey(level)).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss("categories")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get categories from cache: %w", err)
	}

	var categories []entity.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}

	metrics.RecordCacheHit("categories")
	return categories, nil
}

func (r *RedisClient) SetCategories(ctx context.Context, level int, categories []entity.Category, ttl time.Duration) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	if err := r.client.Set(ctx, categoriesKey(level), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set categories in cache: %w", err)
	}
	return nil
}

// InvalidateCategories сбрасывает кеш категорий на всех уровнях
func (r *RedisClient) InvalidateCategories(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, categoriesKeyPattern).Result()
	if err != nil {
		return fmt.Errorf("failed to list category cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete categories from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) GetMainPage(ctx context.Context) (*entity.MainPage, error) {
	data, err := r.client.Get(ctx, mainPageKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss("mainpage")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get main page from cache: %w", err)
	}

	var page entity.MainPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal main page: %w", err)
	}

	metrics.RecordCacheHit("mainpage")
	return &page, nil
}

func (r *RedisClient) SetMainPage(ctx context.Context, page *entity.MainPage, ttl time.Duration) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal main page: %w", err)
	}

	if err := r.client.Set(ctx, mainPageKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set main page in cache: %w", err)
	}
	return nil
}

func (r *RedisClient) InvalidateMainPage(ctx context.Context) error {
	if err := r.client.Del(ctx, mainPageKey).Err(); err != nil {
		return fmt.Errorf("failed to delete main page from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
