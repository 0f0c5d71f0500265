package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"tryon-server/modules/common/config"
)

// Connect - Redis 연결 생성
func Connect(cfg *config.Config) *redis.Client {
	log.Printf("🔌 Connecting to Redis: %s", cfg.GetRedisAddr())

	// TLS 설정 (InsecureSkipVerify 추가)
	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, // Render.com Redis용
		}
	}

	// Redis 클라이언트 생성
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,                // 기본 DB
		DialTimeout:  10 * time.Second, // 타임아웃 늘림
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// 연결 테스트
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Printf("🔍 Testing Redis connection...")
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("❌ Redis ping failed: %v", err)
		return nil
	}

	return rdb
}

// SetJobCancelled - Job 취소 플래그 설정 (TTL 1시간)
func SetJobCancelled(ctx context.Context, rdb *redis.Client, jobID string) error {
	key := fmt.Sprintf("cancel:batch:%s", jobID)
	if err := rdb.Set(ctx, key, "1", time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set cancel flag: %w", err)
	}
	log.Printf("🚫 Cancel flag set for job: %s", jobID)
	return nil
}

// IsJobCancelled - Job 취소 여부 확인
func IsJobCancelled(ctx context.Context, rdb *redis.Client, jobID string) bool {
	key := fmt.Sprintf("cancel:batch:%s", jobID)
	exists, err := rdb.Exists(ctx, key).Result()
	if err != nil {
		log.Printf("⚠️ Failed to check cancel flag for job %s: %v", jobID, err)
		return false
	}
	return exists > 0
}
