package storage

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"badminton-bot/types"
)

var ctx = context.Background()

const (
	historyKey = "history:availability"
	reportKey  = "report:latest"
)

// RedisStore держит историю и отчет в Redis вместо файлов. Тела -
// тот же JSON, что и в файлах, так что форматы взаимозаменяемы.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,     // например: "localhost:6379" или "redis-xxxxx.upstash.io:6379"
		Password: password, // можно пустым
		DB:       db,
	})
	return &RedisStore{client: rdb}
}

func (s *RedisStore) Ping() error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) LoadHistory() types.HistoryState {
	val, err := s.client.Get(ctx, historyKey).Result()
	if err == redis.Nil {
		log.Println("📦 No history in Redis. Starting fresh.")
		return types.HistoryState{}
	}
	if err != nil {
		log.Printf("⚠️ Failed to load history from Redis: %v. Starting fresh.", err)
		return types.HistoryState{}
	}

	history, err := decodeHistory([]byte(val))
	if err != nil {
		log.Printf("⚠️ Failed to parse history from Redis: %v. Starting fresh.", err)
		return types.HistoryState{}
	}
	return history
}

func (s *RedisStore) SaveHistory(history types.HistoryState) error {
	data, err := encodeHistory(history)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, historyKey, data, 0).Err(); err != nil {
		return err
	}
	log.Println("💾 Saved history to Redis")
	return nil
}

func (s *RedisStore) SaveReport(days []types.DayAvailability) error {
	data, err := encodeReport(days)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, reportKey, data, 0).Err(); err != nil {
		return err
	}
	log.Println("💾 Saved report to Redis")
	return nil
}
