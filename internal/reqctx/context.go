// Package reqctx carries the per-request store capabilities through service and
// repository calls.
//
// A Context is built once per inbound request by a Provider and passed down
// explicitly; nothing is looked up from ambient or global state.
package reqctx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Context is a context.Context that also exposes the relational and key-value
// capabilities for the current unit of work.
type Context interface {
	context.Context

	// DB returns the write handle. Inside Transaction it is bound to the
	// open transaction.
	DB() *gorm.DB

	// ReadDB returns the read handle. Inside Transaction it is bound to the
	// open transaction so reads observe uncommitted writes.
	ReadDB() *gorm.DB

	Redis() redis.Cmdable

	// Transaction runs fn atomically. A non-nil error from fn rolls back
	// every write issued through the Context passed to fn.
	Transaction(fn func(tx Context) error) error
}

// Provider builds a Context for an inbound request.
type Provider interface {
	New(ctx context.Context) Context
}

type requestContext struct {
	context.Context
	write *gorm.DB
	read  *gorm.DB
	redis redis.Cmdable
}

func (c *requestContext) DB() *gorm.DB {
	return c.write.WithContext(c.Context)
}

func (c *requestContext) ReadDB() *gorm.DB {
	return c.read.WithContext(c.Context)
}

func (c *requestContext) Redis() redis.Cmdable {
	return c.redis
}

func (c *requestContext) Transaction(fn func(tx Context) error) error {
	return c.DB().Transaction(func(tx *gorm.DB) error {
		return fn(&requestContext{
			Context: c.Context,
			write:   tx,
			read:    tx,
			redis:   c.redis,
		})
	})
}

// Pool hands out Contexts backed by shared connection pools.
type Pool struct {
	write *gorm.DB
	read  *gorm.DB
	redis redis.Cmdable
}

func NewPool(write, read *gorm.DB, redis redis.Cmdable) *Pool {
	if read == nil {
		read = write
	}
	return &Pool{
		write: write,
		read:  read,
		redis: redis,
	}
}

func (p *Pool) New(ctx context.Context) Context {
	return &requestContext{
		Context: ctx,
		write:   p.write,
		read:    p.read,
		redis:   p.redis,
	}
}
