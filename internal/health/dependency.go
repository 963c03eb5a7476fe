package health

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func unhealthy(name string, err error) CheckResult {
	return CheckResult{Name: name, Healthy: false, Error: err.Error()}
}

type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	sqlDB, err := c.db.DB()
	if err != nil {
		return unhealthy("db", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unhealthy("db", err)
	}
	return CheckResult{Name: "db", Healthy: true}
}

type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return unhealthy("redis", err)
	}
	return CheckResult{Name: "redis", Healthy: true}
}

// MinIOChecker only proves the object store answers. The bucket itself is
// created on first upload.
type MinIOChecker struct {
	client *minio.Client
	bucket string
}

func NewMinIOChecker(client *minio.Client, bucket string) Checker {
	if client == nil {
		return nil
	}
	return &MinIOChecker{client: client, bucket: bucket}
}

func (c *MinIOChecker) Check(ctx context.Context) CheckResult {
	if _, err := c.client.BucketExists(ctx, c.bucket); err != nil {
		return unhealthy("minio", fmt.Errorf("bucket %q: %w", c.bucket, err))
	}
	return CheckResult{Name: "minio", Healthy: true}
}

// PingChecker adapts any dependency exposing Ping, such as the mail queue
// connection.
type PingChecker struct {
	name string
	ping func(ctx context.Context) error
}

func NewPingChecker(name string, ping func(ctx context.Context) error) Checker {
	if ping == nil {
		return nil
	}
	return &PingChecker{name: name, ping: ping}
}

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	if err := c.ping(ctx); err != nil {
		return unhealthy(c.name, err)
	}
	return CheckResult{Name: c.name, Healthy: true}
}
