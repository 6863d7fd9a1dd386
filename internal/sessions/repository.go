package sessions

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/config"
	"github.com/elskow/registry-auth/internal/reqctx"
)

var ErrSessionNotFound = common.ErrNotFound

type Repository interface {
	Create(ctx reqctx.Context, id, accountID uuid.UUID) (*Session, error)
	FetchOne(ctx reqctx.Context, id uuid.UUID) (*Session, error)
	FetchMany(ctx reqctx.Context, accountID *uuid.UUID, page common.Pagination) ([]Session, error)
	// Update with a nil expiresAt returns the stored session untouched.
	Update(ctx reqctx.Context, id uuid.UUID, expiresAt *time.Time) (*Session, error)
	Delete(ctx reqctx.Context, id uuid.UUID) (*Session, error)
}

type repository struct {
	ttl       time.Duration
	prefix    string
	scanCount int64
	log       *zap.Logger
	now       func() time.Time
}

func NewRepository(cfg *config.SessionConfig, log *zap.Logger) Repository {
	scanCount := cfg.ScanCount
	if scanCount <= 0 {
		scanCount = 100
	}
	return &repository{
		ttl:       cfg.TTL,
		prefix:    cfg.KeyPrefix,
		scanCount: scanCount,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *repository) key(id uuid.UUID) string {
	return r.prefix + ":" + id.String()
}

func (r *repository) pattern() string {
	return r.prefix + ":*"
}

// Create stores the session with a TTL set in the same command as the value.
// The stored expires_at and the server-side expiry come from separate clock
// reads and may differ slightly.
func (r *repository) Create(ctx reqctx.Context, id, accountID uuid.UUID) (*Session, error) {
	now := r.now()
	session := &Session{
		ID:        id,
		AccountID: accountID,
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := ctx.Redis().Set(ctx, r.key(id), payload, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

func (r *repository) FetchOne(ctx reqctx.Context, id uuid.UUID) (*Session, error) {
	raw, err := ctx.Redis().Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decode(raw)
}

// FetchMany walks the key space with SCAN. SCAN gives no guarantee on how many
// keys one call returns and may repeat keys, so pages are cut client-side
// after filtering and de-duplication.
func (r *repository) FetchMany(ctx reqctx.Context, accountID *uuid.UUID, page common.Pagination) ([]Session, error) {
	if !page.Enabled() {
		page = common.NewPagination(1, common.DefaultPageSize)
	}
	if page.Limit() <= 0 {
		page = common.NewPagination(*page.Page, common.DefaultPageSize)
	}
	skip := page.Offset()
	limit := page.Limit()

	rdb := ctx.Redis()
	seen := make(map[string]struct{})
	sessions := make([]Session, 0, limit)

	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, r.pattern(), r.scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("scan sessions: %w", err)
		}

		fresh := keys[:0]
		for _, k := range keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			fresh = append(fresh, k)
		}

		if len(fresh) > 0 {
			values, err := rdb.MGet(ctx, fresh...).Result()
			if err != nil {
				return nil, fmt.Errorf("load sessions: %w", err)
			}

			for i, v := range values {
				raw, ok := v.(string)
				if !ok {
					// Expired or deleted between SCAN and MGET.
					r.log.Warn("session vanished during scan", zap.String("key", fresh[i]))
					continue
				}
				session, err := decode([]byte(raw))
				if err != nil {
					r.log.Warn("skipping undecodable session", zap.String("key", fresh[i]), zap.Error(err))
					continue
				}
				if accountID != nil && session.AccountID != *accountID {
					continue
				}
				if skip > 0 {
					skip--
					continue
				}
				sessions = append(sessions, *session)
				if len(sessions) == limit {
					return sessions, nil
				}
			}
		}

		cursor = next
		if cursor == 0 {
			return sessions, nil
		}
	}
}

func (r *repository) Update(ctx reqctx.Context, id uuid.UUID, expiresAt *time.Time) (*Session, error) {
	session, err := r.FetchOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if expiresAt == nil {
		return session, nil
	}

	session.ExpiresAt = expiresAt.UTC()
	session.UpdatedAt = r.now()

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	key := r.key(id)
	_, err = ctx.Redis().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetArgs(ctx, key, payload, redis.SetArgs{KeepTTL: true})
		pipe.ExpireAt(ctx, key, session.ExpiresAt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

func (r *repository) Delete(ctx reqctx.Context, id uuid.UUID) (*Session, error) {
	raw, err := ctx.Redis().GetDel(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("delete session: %w", err)
	}
	return decode(raw)
}

func decode(raw []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}
