package loginattempts

import (
	"github.com/google/uuid"

	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/reqctx"
)

var ErrLoginAttemptNotFound = common.ErrNotFound

type Repository interface {
	Create(ctx reqctx.Context, identifier, ipAddress, userAgent string) (*LoginAttempt, error)
	FetchByID(ctx reqctx.Context, id uuid.UUID) (*LoginAttempt, error)
	FetchMany(ctx reqctx.Context, filter Filter, page common.Pagination) ([]LoginAttempt, error)
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Create(ctx reqctx.Context, identifier, ipAddress, userAgent string) (*LoginAttempt, error) {
	attempt := &LoginAttempt{
		ID:         uuid.New(),
		Identifier: identifier,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	}
	if err := ctx.DB().Create(attempt).Error; err != nil {
		return nil, common.TranslateError(err)
	}
	return attempt, nil
}

func (r *repository) FetchByID(ctx reqctx.Context, id uuid.UUID) (*LoginAttempt, error) {
	var attempt LoginAttempt
	if err := ctx.ReadDB().Where("login_attempt_id = ?", id).Take(&attempt).Error; err != nil {
		return nil, common.TranslateError(err)
	}
	return &attempt, nil
}

func (r *repository) FetchMany(ctx reqctx.Context, filter Filter, page common.Pagination) ([]LoginAttempt, error) {
	query := ctx.ReadDB().Order("created_at, login_attempt_id")
	if len(filter.Identifiers) > 0 {
		query = query.Where("identifier IN ?", filter.Identifiers)
	}
	if filter.IPAddress != nil {
		query = query.Where("ip_address = ?", *filter.IPAddress)
	}
	if page.Enabled() {
		query = query.Limit(page.Limit()).Offset(page.Offset())
	}

	attempts := []LoginAttempt{}
	if err := query.Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
