// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for simulation event records.
var DefaultQueueName = "range_events"

// SimEventRecord holds the minimal info needed by the after-action review
// consumer that drains the queue.
type SimEventRecord struct {
	LobbyCode   string `json:"lobby_code"`
	EventType   string `json:"event_type"`
	Description string `json:"description"`
	Participant string `json:"participant,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishSimEvent serializes the given record to JSON, then pushes it to the
// Redis queue. This does not block the calling logic (other than a quick
// network send).
func PublishSimEvent(ctx context.Context, record SimEventRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal SimEventRecord: %w", err)
	}

	queueName := getEnv("RANGE_EVENTS_QUEUE_NAME", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

// EventRecorder adapts the global Redis queue to the session audit hook.
// Publishing is best effort; a dead Redis never affects gameplay.
type EventRecorder struct{}

// Record pushes one event record onto the queue.
func (EventRecorder) Record(code, eventType, description, participant string) {
	if Rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := PublishSimEvent(ctx, SimEventRecord{
		LobbyCode:   code,
		EventType:   eventType,
		Description: description,
		Participant: participant,
		Timestamp:   time.Now().UnixMilli(),
	})
	if err != nil {
		log.Warnf("cache: failed to publish sim event for lobby %s: %v", code, err)
	}
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
