package credentials

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/reqctx"
)

var (
	ErrCredentialNotFound = common.ErrNotFound
	ErrCredentialExists   = common.ErrDuplicate
)

type Repository interface {
	Create(ctx reqctx.Context, accountID uuid.UUID, identifier, secret string) (*Credential, error)
	FetchByID(ctx reqctx.Context, id uuid.UUID, status common.Status) (*Credential, error)
	FetchByIdentifier(ctx reqctx.Context, identifier string, status common.Status) (*Credential, error)
	FetchMany(ctx reqctx.Context, filter Filter, page common.Pagination) ([]Credential, error)
	// Update coalesces nil arguments to the stored values.
	Update(ctx reqctx.Context, id uuid.UUID, identifier, secret *string) (*Credential, error)
	Delete(ctx reqctx.Context, id uuid.UUID) (*Credential, error)
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Create(ctx reqctx.Context, accountID uuid.UUID, identifier, secret string) (*Credential, error) {
	credential := &Credential{
		ID:         uuid.New(),
		AccountID:  accountID,
		Identifier: identifier,
		Secret:     secret,
		Status:     common.StatusActive,
	}
	if err := ctx.DB().Create(credential).Error; err != nil {
		return nil, common.TranslateError(err)
	}
	return credential, nil
}

func (r *repository) FetchByID(ctx reqctx.Context, id uuid.UUID, status common.Status) (*Credential, error) {
	return r.fetchOne(ctx, "credentials_id = ?", id, status)
}

func (r *repository) FetchByIdentifier(ctx reqctx.Context, identifier string, status common.Status) (*Credential, error) {
	return r.fetchOne(ctx, "identifier = ?", identifier, status)
}

func (r *repository) fetchOne(ctx reqctx.Context, predicate string, value any, status common.Status) (*Credential, error) {
	var credential Credential
	err := ctx.ReadDB().
		Where(predicate, value).
		Where("status = ?", status).
		Take(&credential).Error
	if err != nil {
		return nil, common.TranslateError(err)
	}
	return &credential, nil
}

func (r *repository) FetchMany(ctx reqctx.Context, filter Filter, page common.Pagination) ([]Credential, error) {
	query := ctx.ReadDB().
		Where("status = ?", filter.Status).
		Order("created_at, credentials_id")
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if page.Enabled() {
		query = query.Limit(page.Limit()).Offset(page.Offset())
	}

	credentials := []Credential{}
	if err := query.Find(&credentials).Error; err != nil {
		return nil, err
	}
	return credentials, nil
}

const updateQuery = `
UPDATE credentials
SET identifier = COALESCE(@identifier, identifier),
    secret = COALESCE(@secret, secret),
    updated_at = NOW()
WHERE credentials_id = @id
  AND status = @status
RETURNING credentials_id, account_id, identifier, secret, status, created_at, updated_at`

const deleteQuery = `
UPDATE credentials
SET status = @deleted,
    updated_at = NOW()
WHERE credentials_id = @id
  AND status = @status
RETURNING credentials_id, account_id, identifier, secret, status, created_at, updated_at`

func (r *repository) Update(ctx reqctx.Context, id uuid.UUID, identifier, secret *string) (*Credential, error) {
	return scanOne(ctx.DB().Raw(updateQuery, map[string]any{
		"id":         id,
		"identifier": identifier,
		"secret":     secret,
		"status":     common.StatusActive,
	}))
}

func (r *repository) Delete(ctx reqctx.Context, id uuid.UUID) (*Credential, error) {
	return scanOne(ctx.DB().Raw(deleteQuery, map[string]any{
		"id":      id,
		"deleted": common.StatusDeleted,
		"status":  common.StatusActive,
	}))
}

func scanOne(query *gorm.DB) (*Credential, error) {
	var credential Credential
	result := query.Scan(&credential)
	if result.Error != nil {
		return nil, common.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrCredentialNotFound
	}
	return &credential, nil
}
