package redis

import (
	"VoiceCommerce/pkg/nlp"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// IRedis stores the per-user dialogue context between utterances.
type IRedis interface {
	SetDialogue(ctx context.Context, userID string, dialogue nlp.DialogueContext, expiration time.Duration) error
	GetDialogue(ctx context.Context, userID string) (nlp.DialogueContext, error)
	DeleteDialogue(ctx context.Context, userID string) error
}

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

func DialogueKey(userID string) string {
	return "dialogue:" + userID
}

func (r *redisClient) SetDialogue(ctx context.Context, userID string, dialogue nlp.DialogueContext, expiration time.Duration) error {
	key := DialogueKey(userID)

	payload, err := json.Marshal(dialogue)
	if err != nil {
		return fmt.Errorf("encode dialogue: %w", err)
	}

	if err := r.client.Set(ctx, key, payload, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error setting dialogue for key %s: %v", key, err))
		return err
	}
	logrus.Debug(fmt.Sprintf("Stored dialogue for key %s with expiration %v", key, expiration))
	return nil
}

// GetDialogue returns an empty context when nothing is stored for the user.
func (r *redisClient) GetDialogue(ctx context.Context, userID string) (nlp.DialogueContext, error) {
	key := DialogueKey(userID)

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nlp.DialogueContext{}, nil
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting dialogue for key %s: %v", key, err))
		return nlp.DialogueContext{}, err
	}

	var dialogue nlp.DialogueContext
	if err := json.Unmarshal(val, &dialogue); err != nil {
		logrus.Warn(fmt.Sprintf("Discarding unreadable dialogue for key %s: %v", key, err))
		return nlp.DialogueContext{}, nil
	}
	return dialogue, nil
}

func (r *redisClient) DeleteDialogue(ctx context.Context, userID string) error {
	key := DialogueKey(userID)

	result, err := r.client.Del(ctx, key).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error deleting dialogue for key %s: %v", key, err))
		return err
	}
	if result == 0 {
		logrus.Debug(fmt.Sprintf("Dialogue key %s not found for deletion", key))
	}
	return nil
}
