package accounts

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/reqctx"
)

var (
	ErrAccountNotFound = common.ErrNotFound
	ErrAccountExists   = common.ErrDuplicate
)

type Repository interface {
	Create(ctx reqctx.Context, account *Account) (*Account, error)
	FetchByID(ctx reqctx.Context, id uuid.UUID, status common.Status) (*Account, error)
	FetchByIdentifier(ctx reqctx.Context, identifier string, status common.Status) (*Account, error)
	FetchMany(ctx reqctx.Context, filter Filter, page common.Pagination) ([]Account, error)
	Update(ctx reqctx.Context, id uuid.UUID, changes Changes) (*Account, error)
	Delete(ctx reqctx.Context, id uuid.UUID) (*Account, error)
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

// Create inserts account as ACTIVE. The caller assigns the ID.
func (r *repository) Create(ctx reqctx.Context, account *Account) (*Account, error) {
	row := *account
	row.Status = common.StatusActive
	if err := ctx.DB().Create(&row).Error; err != nil {
		return nil, common.TranslateError(err)
	}
	return &row, nil
}

func (r *repository) FetchByID(ctx reqctx.Context, id uuid.UUID, status common.Status) (*Account, error) {
	return r.fetchOne(ctx, "account_id = ?", id, status)
}

func (r *repository) FetchByIdentifier(ctx reqctx.Context, identifier string, status common.Status) (*Account, error) {
	return r.fetchOne(ctx, "identifier = ?", identifier, status)
}

func (r *repository) fetchOne(ctx reqctx.Context, predicate string, value any, status common.Status) (*Account, error) {
	var account Account
	err := ctx.ReadDB().
		Where(predicate, value).
		Where("status = ?", status).
		Take(&account).Error
	if err != nil {
		return nil, common.TranslateError(err)
	}
	return &account, nil
}

func (r *repository) FetchMany(ctx reqctx.Context, filter Filter, page common.Pagination) ([]Account, error) {
	query := ctx.ReadDB().
		Where("status = ?", filter.Status).
		Order("created_at, account_id")
	if page.Enabled() {
		query = query.Limit(page.Limit()).Offset(page.Offset())
	}

	accounts := []Account{}
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

const updateQuery = `
UPDATE accounts
SET identifier = COALESCE(@identifier, identifier),
    first_name = COALESCE(@first_name, first_name),
    last_name = COALESCE(@last_name, last_name),
    updated_at = NOW()
WHERE account_id = @id
  AND status = @status
RETURNING account_id, identifier, first_name, last_name, status, created_at, updated_at`

const deleteQuery = `
UPDATE accounts
SET status = @deleted,
    updated_at = NOW()
WHERE account_id = @id
  AND status = @status
RETURNING account_id, identifier, first_name, last_name, status, created_at, updated_at`

func (r *repository) Update(ctx reqctx.Context, id uuid.UUID, changes Changes) (*Account, error) {
	return scanOne(ctx.DB().Raw(updateQuery, map[string]any{
		"id":         id,
		"identifier": changes.Identifier,
		"first_name": changes.FirstName,
		"last_name":  changes.LastName,
		"status":     common.StatusActive,
	}))
}

func (r *repository) Delete(ctx reqctx.Context, id uuid.UUID) (*Account, error) {
	return scanOne(ctx.DB().Raw(deleteQuery, map[string]any{
		"id":      id,
		"deleted": common.StatusDeleted,
		"status":  common.StatusActive,
	}))
}

func scanOne(query *gorm.DB) (*Account, error) {
	var account Account
	result := query.Scan(&account)
	if result.Error != nil {
		return nil, common.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrAccountNotFound
	}
	return &account, nil
}
