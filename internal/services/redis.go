package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	checkoutLockTTL  = 2 * time.Minute
	locationTTL      = 6 * time.Hour
	updatesChannelNS = "hilot"
)

// Redis backs the checkout idempotency guard, the last-known location cache
// and a pub/sub fan-out of booking updates.
type Redis struct {
	client *redis.Client
}

// NewRedis parses url and pings the server.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	if url == "" {
		url = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func checkoutKey(key string) string {
	return "checkout:idempotency:" + key
}

func locationKey(bookingID uint, actor models.EventActor) string {
	return fmt.Sprintf("booking:location:%d:%s", bookingID, actor)
}

func channelName(topic string) string {
	return updatesChannelNS + ":" + topic
}

// Acquire claims key for one in-flight checkout.
func (r *Redis) Acquire(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, checkoutKey(key), time.Now().Unix(), checkoutLockTTL).Result()
}

func (r *Redis) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, checkoutKey(key)).Err()
}

type cachedLocation struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Updated int64   `json:"updated"`
}

// SetLocation stores the last position an actor reported for a booking.
func (r *Redis) SetLocation(ctx context.Context, bookingID uint, actor models.EventActor, lat, lng float64) error {
	data, err := json.Marshal(cachedLocation{Lat: lat, Lng: lng, Updated: time.Now().Unix()})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, locationKey(bookingID, actor), data, locationTTL).Err()
}

// Publish sends a booking update to the hilot:<topic> channel.
func (r *Redis) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(map[string]interface{}{
		"type":      topic,
		"data":      payload,
		"timestamp": time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channelName(topic), data).Err()
}
