package accounts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/apperror"
	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/credentials"
	"github.com/elskow/registry-auth/internal/events"
	"github.com/elskow/registry-auth/internal/reqctx"
	"github.com/elskow/registry-auth/internal/security"
	"github.com/elskow/registry-auth/internal/validation"
)

type Service struct {
	log         *zap.Logger
	identifiers *validation.IdentifierValidator
	hasher      security.PasswordHasher
	repository  Repository
	credentials credentials.Repository
	events      events.Publisher
}

func NewService(
	log *zap.Logger,
	identifiers *validation.IdentifierValidator,
	hasher security.PasswordHasher,
	repo Repository,
	credentialRepo credentials.Repository,
	publisher events.Publisher,
) *Service {
	return &Service{
		log:         log,
		identifiers: identifiers,
		hasher:      hasher,
		repository:  repo,
		credentials: credentialRepo,
		events:      publisher,
	}
}

type CreateRequest struct {
	Identifier string
	Password   string
	FirstName  string
	LastName   string
}

// Create signs up a new account together with its credential. Either both
// rows persist or neither does.
func (s *Service) Create(ctx reqctx.Context, req CreateRequest) (*Account, error) {
	identifier, ok := s.identifiers.Normalize(req.Identifier)
	if !ok {
		return nil, apperror.AccountsIdentifierInvalid
	}
	if !validation.ValidPassword(req.Password) {
		return nil, apperror.AccountsPasswordInvalid
	}
	if !validation.ValidName(req.FirstName) || !validation.ValidName(req.LastName) {
		return nil, apperror.AccountsNameInvalid
	}

	if _, err := s.repository.FetchByIdentifier(ctx, identifier, common.StatusActive); err == nil {
		return nil, apperror.AccountsIdentifierExists
	} else if !errors.Is(err, ErrAccountNotFound) {
		s.log.Error("failed to check identifier uniqueness", zap.Error(err), zap.Stack("stack"))
		return nil, apperror.AccountsCreationFailed
	}

	var created *Account
	err := ctx.Transaction(func(tx reqctx.Context) error {
		account, err := s.repository.Create(tx, &Account{
			ID:         uuid.New(),
			Identifier: identifier,
			FirstName:  strings.TrimSpace(req.FirstName),
			LastName:   strings.TrimSpace(req.LastName),
		})
		if err != nil {
			return fmt.Errorf("insert account: %w", err)
		}

		secret, err := s.hasher.Hash(req.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		if _, err := s.credentials.Create(tx, account.ID, identifier, secret); err != nil {
			return fmt.Errorf("insert credential: %w", err)
		}

		created = account
		return nil
	})
	if err != nil {
		// Lost a race with a concurrent signup past the pre-check.
		if errors.Is(err, common.ErrDuplicate) {
			return nil, apperror.AccountsIdentifierExists
		}
		s.log.Error("failed to create account",
			zap.String("identifier", identifier),
			zap.Error(err),
			zap.Stack("stack"))
		return nil, apperror.AccountsCreationFailed
	}

	s.events.Publish(ctx, events.AccountCreated, created)
	return created, nil
}

func (s *Service) FetchOne(ctx reqctx.Context, id uuid.UUID) (*Account, error) {
	account, err := s.repository.FetchByID(ctx, id, common.StatusActive)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, apperror.AccountsNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *Service) FetchMany(ctx reqctx.Context, page common.Pagination) ([]Account, error) {
	return s.repository.FetchMany(ctx, Filter{Status: common.StatusActive}, page)
}

// PartialUpdate applies changes to an active account. A new identifier is
// propagated to the account's credentials in the same transaction.
func (s *Service) PartialUpdate(ctx reqctx.Context, id uuid.UUID, changes Changes) (*Account, error) {
	if changes.Identifier != nil {
		identifier, ok := s.identifiers.Normalize(*changes.Identifier)
		if !ok {
			return nil, apperror.AccountsIdentifierInvalid
		}
		changes.Identifier = &identifier

		existing, err := s.repository.FetchByIdentifier(ctx, identifier, common.StatusActive)
		if err == nil && existing.ID != id {
			return nil, apperror.AccountsIdentifierExists
		}
		if err != nil && !errors.Is(err, ErrAccountNotFound) {
			s.log.Error("failed to check identifier uniqueness", zap.Error(err), zap.Stack("stack"))
			return nil, apperror.AccountsUpdateFailed
		}
	}
	if changes.FirstName != nil {
		if !validation.ValidName(*changes.FirstName) {
			return nil, apperror.AccountsNameInvalid
		}
		changes.FirstName = common.Ptr(strings.TrimSpace(*changes.FirstName))
	}
	if changes.LastName != nil {
		if !validation.ValidName(*changes.LastName) {
			return nil, apperror.AccountsNameInvalid
		}
		changes.LastName = common.Ptr(strings.TrimSpace(*changes.LastName))
	}

	var updated *Account
	err := ctx.Transaction(func(tx reqctx.Context) error {
		account, err := s.repository.Update(tx, id, changes)
		if err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				return apperror.AccountsNotFound
			}
			return fmt.Errorf("update account: %w", err)
		}

		if changes.Identifier != nil {
			if err := s.syncCredentialIdentifier(tx, id, *changes.Identifier); err != nil {
				return err
			}
		}

		updated = account
		return nil
	})
	if err != nil {
		var serviceErr apperror.ServiceError
		if errors.As(err, &serviceErr) {
			return nil, serviceErr
		}
		if errors.Is(err, common.ErrDuplicate) {
			return nil, apperror.AccountsIdentifierExists
		}
		s.log.Error("failed to update account",
			zap.String("account_id", id.String()),
			zap.Error(err),
			zap.Stack("stack"))
		return nil, apperror.AccountsUpdateFailed
	}

	return updated, nil
}

func (s *Service) syncCredentialIdentifier(tx reqctx.Context, accountID uuid.UUID, identifier string) error {
	creds, err := s.credentials.FetchMany(tx, credentials.Filter{
		AccountID: &accountID,
		Status:    common.StatusActive,
	}, common.Pagination{})
	if err != nil {
		return fmt.Errorf("fetch credentials: %w", err)
	}
	for _, c := range creds {
		if c.Identifier == identifier {
			continue
		}
		if _, err := s.credentials.Update(tx, c.ID, &identifier, nil); err != nil {
			return fmt.Errorf("update credential %s: %w", c.ID, err)
		}
	}
	return nil
}

// ChangePassword replaces the secret on every active credential of the account.
func (s *Service) ChangePassword(ctx reqctx.Context, id uuid.UUID, password string) error {
	if !validation.ValidPassword(password) {
		return apperror.AccountsPasswordInvalid
	}

	secret, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error("failed to hash password", zap.Error(err), zap.Stack("stack"))
		return apperror.AccountsUpdateFailed
	}

	err = ctx.Transaction(func(tx reqctx.Context) error {
		if _, err := s.repository.FetchByID(tx, id, common.StatusActive); err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				return apperror.AccountsNotFound
			}
			return fmt.Errorf("fetch account: %w", err)
		}

		creds, err := s.credentials.FetchMany(tx, credentials.Filter{
			AccountID: &id,
			Status:    common.StatusActive,
		}, common.Pagination{})
		if err != nil {
			return fmt.Errorf("fetch credentials: %w", err)
		}
		for _, c := range creds {
			if _, err := s.credentials.Update(tx, c.ID, nil, &secret); err != nil {
				return fmt.Errorf("update credential %s: %w", c.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		var serviceErr apperror.ServiceError
		if errors.As(err, &serviceErr) {
			return serviceErr
		}
		s.log.Error("failed to change password",
			zap.String("account_id", id.String()),
			zap.Error(err),
			zap.Stack("stack"))
		return apperror.AccountsUpdateFailed
	}
	return nil
}

// Delete soft-deletes the account and every active credential it owns. If any
// credential cannot be deleted the account stays active.
func (s *Service) Delete(ctx reqctx.Context, id uuid.UUID) (*Account, error) {
	var deleted *Account
	err := ctx.Transaction(func(tx reqctx.Context) error {
		account, err := s.repository.Delete(tx, id)
		if err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				return apperror.AccountsNotFound
			}
			return fmt.Errorf("delete account: %w", err)
		}

		creds, err := s.credentials.FetchMany(tx, credentials.Filter{
			AccountID: &id,
			Status:    common.StatusActive,
		}, common.Pagination{})
		if err != nil {
			return fmt.Errorf("fetch credentials: %w", err)
		}
		for _, c := range creds {
			if _, err := s.credentials.Delete(tx, c.ID); err != nil {
				return fmt.Errorf("delete credential %s: %w", c.ID, err)
			}
		}

		deleted = account
		return nil
	})
	if err != nil {
		var serviceErr apperror.ServiceError
		if errors.As(err, &serviceErr) {
			return nil, serviceErr
		}
		s.log.Error("failed to delete account",
			zap.String("account_id", id.String()),
			zap.Error(err),
			zap.Stack("stack"))
		return nil, apperror.AccountsDeletionFailed
	}

	s.events.Publish(ctx, events.AccountDeleted, deleted)
	return deleted, nil
}
