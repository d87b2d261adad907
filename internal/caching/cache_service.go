package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"eventops/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Item caching
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error)
	SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// On-hand projection caching
	GetOnHand(ctx context.Context, itemID, locationID uuid.UUID) (*models.OnHand, error)
	SetOnHand(ctx context.Context, row *models.OnHand, ttl time.Duration) error
	DeleteOnHand(ctx context.Context, itemID, locationID uuid.UUID) error

	// Cache invalidation
	InvalidateAll(ctx context.Context) error

	// Ping reports connectivity for health checks.
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port as well as bare host:port.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func itemKey(itemID uuid.UUID) string {
	return fmt.Sprintf("eventops:item:%s", itemID)
}

func onHandKey(itemID, locationID uuid.UUID) string {
	return fmt.Sprintf("eventops:onhand:%s:%s", itemID, locationID)
}

func (r *redisCacheService) GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	data, err := r.client.Get(ctx, itemKey(itemID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var item models.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *redisCacheService) SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, itemKey(item.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.client.Del(ctx, itemKey(itemID)).Err()
}

func (r *redisCacheService) GetOnHand(ctx context.Context, itemID, locationID uuid.UUID) (*models.OnHand, error) {
	data, err := r.client.Get(ctx, onHandKey(itemID, locationID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var row models.OnHand
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *redisCacheService) SetOnHand(ctx context.Context, row *models.OnHand, ttl time.Duration) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, onHandKey(row.ItemID, row.LocationID), data, ttl).Err()
}

func (r *redisCacheService) DeleteOnHand(ctx context.Context, itemID, locationID uuid.UUID) error {
	return r.client.Del(ctx, onHandKey(itemID, locationID)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) InvalidateAll(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, "eventops:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
