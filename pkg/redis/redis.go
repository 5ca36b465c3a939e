package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// IRedis caches upload status between dialog polls so a caller waiting on a
// photo does not hammer Postgres every ten seconds.
type IRedis interface {
	SetUploadStatus(ctx context.Context, callID string, status string, expiration time.Duration) error
	GetUploadStatus(ctx context.Context, callID string) (string, error)
	DeleteUploadStatus(ctx context.Context, callID string) error
}

var ErrNotFound = redis.Nil

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func statusKey(callID string) string {
	return fmt.Sprintf("upload_status:%s", callID)
}

func (r *redisClient) SetUploadStatus(ctx context.Context, callID string, status string, expiration time.Duration) error {
	err := r.client.Set(ctx, statusKey(callID), status, expiration).Err()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error caching upload status for call %s: %v", callID, err))
		return err
	}
	return nil
}

func (r *redisClient) GetUploadStatus(ctx context.Context, callID string) (string, error) {
	val, err := r.client.Get(ctx, statusKey(callID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", err
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading upload status for call %s: %v", callID, err))
		return "", err
	}
	return val, nil
}

func (r *redisClient) DeleteUploadStatus(ctx context.Context, callID string) error {
	if _, err := r.client.Del(ctx, statusKey(callID)).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Error deleting upload status for call %s: %v", callID, err))
		return err
	}
	return nil
}
