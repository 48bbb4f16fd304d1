package rediscontainer

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/intelliquiz/iqclient/internal/testutil/docker"
)

const hostPort = "6390"

var container = &docker.Container{
	Dockerfile:    "Dockerfile.redis.test",
	Image:         "iqclient-redis-test",
	Name:          "iqclient-redis-test",
	HostPort:      hostPort,
	ContainerPort: "6379",
	Ready:         ping,
	ReadyTimeout:  5 * time.Second,
}

// Addr exposes the Redis host:port combination used by integration tests.
func Addr() string { return "127.0.0.1:" + hostPort }

// Setup builds the Redis test image, runs the container, and waits until it
// answers PING.
func Setup() error { return container.Setup() }

// Teardown stops the Redis container if it is running.
func Teardown() error { return container.Teardown() }

func ping() error {
	client := goredis.NewClient(&goredis.Options{Addr: Addr(), DialTimeout: 200 * time.Millisecond})
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return client.Ping(ctx).Err()
}
