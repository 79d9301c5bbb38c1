package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-boxoffice/internal/models"
)

const keyPrefix = "availability:"

// Cache is a read-through cache for offering availability. Reservations
// and releases invalidate, so a stale "N left" can survive at most TTL
// seconds between storefront polls.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *log.Logger
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		Client: client,
		TTL:    ttl,
		Logger: log.Default(),
	}
}

// GetAvailability returns the cached view, or nil on a miss.
func (c *Cache) GetAvailability(offeringID string) (*models.Availability, error) {
	val, err := c.Client.Get(context.Background(), keyPrefix+offeringID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var availability models.Availability
	if err := json.Unmarshal([]byte(val), &availability); err != nil {
		// Drop the corrupt entry and fall back to the database.
		c.Logger.Printf("REDIS: dropping unreadable availability entry for %s: %v", offeringID, err)
		_ = c.Invalidate(offeringID)
		return nil, nil
	}
	return &availability, nil
}

func (c *Cache) SetAvailability(availability models.Availability) error {
	data, err := json.Marshal(availability)
	if err != nil {
		return err
	}
	return c.Client.Set(context.Background(), keyPrefix+availability.OfferingID, data, c.TTL).Err()
}

func (c *Cache) Invalidate(offeringID string) error {
	return c.Client.Del(context.Background(), keyPrefix+offeringID).Err()
}
