package servers

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/reqctx"
)

var (
	ErrServerNotFound = common.ErrNotFound
	ErrServerExists   = common.ErrDuplicate
)

type Repository interface {
	Create(ctx reqctx.Context, server *Server) (*Server, error)
	FetchByID(ctx reqctx.Context, id uuid.UUID, status common.Status) (*Server, error)
	FetchByName(ctx reqctx.Context, name string, status common.Status) (*Server, error)
	FetchMany(ctx reqctx.Context, filter Filter, page common.Pagination) ([]Server, error)
	// Update applies changes only while the stored version equals version,
	// bumping it by one. A stale version reads as not found.
	Update(ctx reqctx.Context, id uuid.UUID, version int64, changes Changes) (*Server, error)
	Delete(ctx reqctx.Context, id uuid.UUID) (*Server, error)
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Create(ctx reqctx.Context, server *Server) (*Server, error) {
	row := *server
	row.Status = common.StatusActive
	row.Version = 1
	if err := ctx.DB().Create(&row).Error; err != nil {
		return nil, common.TranslateError(err)
	}
	return &row, nil
}

func (r *repository) FetchByID(ctx reqctx.Context, id uuid.UUID, status common.Status) (*Server, error) {
	return r.fetchOne(ctx, "server_id = ?", id, status)
}

func (r *repository) FetchByName(ctx reqctx.Context, name string, status common.Status) (*Server, error) {
	return r.fetchOne(ctx, "server_name = ?", name, status)
}

func (r *repository) fetchOne(ctx reqctx.Context, predicate string, value any, status common.Status) (*Server, error) {
	var server Server
	err := ctx.ReadDB().
		Where(predicate, value).
		Where("status = ?", status).
		Take(&server).Error
	if err != nil {
		return nil, common.TranslateError(err)
	}
	return &server, nil
}

func (r *repository) FetchMany(ctx reqctx.Context, filter Filter, page common.Pagination) ([]Server, error) {
	query := ctx.ReadDB().
		Where("status = ?", filter.Status).
		Order("created_at, server_id")
	if page.Enabled() {
		query = query.Limit(page.Limit()).Offset(page.Offset())
	}

	servers := []Server{}
	if err := query.Find(&servers).Error; err != nil {
		return nil, err
	}
	return servers, nil
}

const returning = `RETURNING server_id, server_name, hourly_request_limit, secret_key, version, status, created_at, updated_at`

const updateQuery = `
UPDATE servers
SET server_name = COALESCE(@name, server_name),
    hourly_request_limit = COALESCE(@limit, hourly_request_limit),
    version = version + 1,
    updated_at = NOW()
WHERE server_id = @id
  AND version = @version
  AND status = @status
` + returning

const deleteQuery = `
UPDATE servers
SET status = @deleted,
    version = version + 1,
    updated_at = NOW()
WHERE server_id = @id
  AND status = @status
` + returning

func (r *repository) Update(ctx reqctx.Context, id uuid.UUID, version int64, changes Changes) (*Server, error) {
	return scanOne(ctx.DB().Raw(updateQuery, map[string]any{
		"id":      id,
		"version": version,
		"name":    changes.Name,
		"limit":   changes.HourlyRequestLimit,
		"status":  common.StatusActive,
	}))
}

func (r *repository) Delete(ctx reqctx.Context, id uuid.UUID) (*Server, error) {
	return scanOne(ctx.DB().Raw(deleteQuery, map[string]any{
		"id":      id,
		"deleted": common.StatusDeleted,
		"status":  common.StatusActive,
	}))
}

func scanOne(query *gorm.DB) (*Server, error) {
	var server Server
	result := query.Scan(&server)
	if result.Error != nil {
		return nil, common.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrServerNotFound
	}
	return &server, nil
}
