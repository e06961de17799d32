package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedStroke is the per-board recent-stroke cache entry
type CachedStroke struct {
	StrokeID    string          `json:"strokeId"`
	BoardID     string          `json:"boardId"`
	ContainerID string          `json:"containerId,omitempty"`
	UserID      string          `json:"userId"`
	Color       string          `json:"color"`
	BrushSize   float64         `json:"brushSize"`
	Opacity     float64         `json:"opacity"`
	Points      json.RawMessage `json:"points"`
	Timestamp   time.Time       `json:"timestamp"`
}

// RedisClient wraps the Redis client for stroke caching
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
	maxLen int64
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string, db int, ttl time.Duration, maxLen int64) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("[Redis] Connected to %s", addr)
	return &RedisClient{client: client, ttl: ttl, maxLen: maxLen}, nil
}

func strokeKey(boardID string) string {
	return "board:" + boardID + ":strokes"
}

// AddStroke appends a stroke to the board's recent-stroke list
func (r *RedisClient) AddStroke(ctx context.Context, boardID string, s *CachedStroke) error {
	key := strokeKey(boardID)
	s.Timestamp = time.Now()

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	if err := r.client.RPush(ctx, key, data).Err(); err != nil {
		log.Printf("[Redis] Failed to add stroke: %v", err)
		return err
	}

	// bound the list so dense boards don't grow without limit
	if r.maxLen > 0 {
		r.client.LTrim(ctx, key, -r.maxLen, -1)
	}
	r.client.Expire(ctx, key, r.ttl)

	return nil
}

// GetStrokes retrieves the cached strokes for a board
func (r *RedisClient) GetStrokes(ctx context.Context, boardID string) ([]CachedStroke, error) {
	results, err := r.client.LRange(ctx, strokeKey(boardID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	strokes := make([]CachedStroke, 0, len(results))
	for _, data := range results {
		var s CachedStroke
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			continue
		}
		strokes = append(strokes, s)
	}

	return strokes, nil
}

// StrokeCount returns the number of cached strokes for a board
func (r *RedisClient) StrokeCount(ctx context.Context, boardID string) (int64, error) {
	return r.client.LLen(ctx, strokeKey(boardID)).Result()
}

// ClearBoard drops the cached strokes for a board
func (r *RedisClient) ClearBoard(ctx context.Context, boardID string) error {
	return r.client.Del(ctx, strokeKey(boardID)).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Health checks if Redis is reachable
func (r *RedisClient) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
