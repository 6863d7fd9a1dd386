// Package reqctxtest provides an in-memory reqctx.Context for service and handler tests.
package reqctxtest

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/elskow/registry-auth/internal/reqctx"
)

// Snapshotter is implemented by in-memory repositories so Transaction can roll
// them back.
type Snapshotter interface {
	Snapshot() (restore func())
}

type Context struct {
	context.Context
	redis  redis.Cmdable
	stores []Snapshotter
}

func New(ctx context.Context, rdb redis.Cmdable, stores ...Snapshotter) *Context {
	return &Context{
		Context: ctx,
		redis:   rdb,
		stores:  stores,
	}
}

func (c *Context) DB() *gorm.DB { return nil }

func (c *Context) ReadDB() *gorm.DB { return nil }

func (c *Context) Redis() redis.Cmdable { return c.redis }

func (c *Context) Transaction(fn func(tx reqctx.Context) error) error {
	restores := make([]func(), 0, len(c.stores))
	for _, s := range c.stores {
		restores = append(restores, s.Snapshot())
	}
	if err := fn(c); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// Provider returns Contexts sharing the same redis client and stores.
type Provider struct {
	redis  redis.Cmdable
	stores []Snapshotter
}

func NewProvider(rdb redis.Cmdable, stores ...Snapshotter) *Provider {
	return &Provider{redis: rdb, stores: stores}
}

func (p *Provider) New(ctx context.Context) reqctx.Context {
	return New(ctx, p.redis, p.stores...)
}
