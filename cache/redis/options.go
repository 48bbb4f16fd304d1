package redis

import (
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Options selects the Redis server the session keys live on. Zero fields take
// defaults sized for a single client process.
type Options struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

func (o Options) client() *goredis.Options {
	out := &goredis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           max(o.DB, 0),
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.ReadTimeout,
		WriteTimeout: o.WriteTimeout,
		PoolSize:     o.PoolSize,
	}
	if out.Addr == "" {
		out.Addr = "127.0.0.1:6379"
	}
	if out.DialTimeout <= 0 {
		out.DialTimeout = 3 * time.Second
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = time.Second
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = time.Second
	}
	if out.PoolSize <= 0 {
		out.PoolSize = 2
	}
	return out
}
