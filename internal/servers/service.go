package servers

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/apperror"
	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/events"
	"github.com/elskow/registry-auth/internal/reqctx"
	"github.com/elskow/registry-auth/internal/security"
)

const maxNameLength = 64

type Service struct {
	log        *zap.Logger
	repository Repository
	events     events.Publisher
}

func NewService(log *zap.Logger, repo Repository, publisher events.Publisher) *Service {
	return &Service{
		log:        log,
		repository: repo,
		events:     publisher,
	}
}

func normalizeName(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > maxNameLength {
		return "", false
	}
	return trimmed, true
}

// Create registers a server under a name unique among active servers. The
// generated secret key is only ever returned here.
func (s *Service) Create(ctx reqctx.Context, name string, hourlyRequestLimit int) (*Created, error) {
	name, ok := normalizeName(name)
	if !ok {
		return nil, apperror.ServersNameInvalid
	}
	if hourlyRequestLimit <= 0 {
		return nil, apperror.ServersRequestLimitInvalid
	}

	if _, err := s.repository.FetchByName(ctx, name, common.StatusActive); err == nil {
		return nil, apperror.ServersNameExists
	} else if !errors.Is(err, ErrServerNotFound) {
		s.log.Error("failed to check server name uniqueness", zap.Error(err), zap.Stack("stack"))
		return nil, apperror.ServersCreationFailed
	}

	var created *Created
	err := ctx.Transaction(func(tx reqctx.Context) error {
		secret, err := security.NewSecretKey()
		if err != nil {
			return fmt.Errorf("generate secret key: %w", err)
		}

		server, err := s.repository.Create(tx, &Server{
			ID:                 uuid.New(),
			Name:               name,
			HourlyRequestLimit: hourlyRequestLimit,
			SecretKey:          secret,
		})
		if err != nil {
			return fmt.Errorf("insert server: %w", err)
		}

		created = &Created{Server: *server, SecretKey: secret}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			return nil, apperror.ServersNameExists
		}
		s.log.Error("failed to create server",
			zap.String("server_name", name),
			zap.Error(err),
			zap.Stack("stack"))
		return nil, apperror.ServersCreationFailed
	}

	s.events.Publish(ctx, events.ServerCreated, created.Server)
	return created, nil
}

func (s *Service) FetchOne(ctx reqctx.Context, id uuid.UUID) (*Server, error) {
	server, err := s.repository.FetchByID(ctx, id, common.StatusActive)
	if err != nil {
		if errors.Is(err, ErrServerNotFound) {
			return nil, apperror.ServersNotFound
		}
		return nil, err
	}
	return server, nil
}

func (s *Service) FetchMany(ctx reqctx.Context, page common.Pagination) ([]Server, error) {
	return s.repository.FetchMany(ctx, Filter{Status: common.StatusActive}, page)
}

// PartialUpdate applies changes only if the caller saw the current version.
// A nil version means the caller sent no precondition.
func (s *Service) PartialUpdate(ctx reqctx.Context, id uuid.UUID, version *int64, changes Changes) (*Server, error) {
	if version == nil {
		return nil, apperror.ServersPreconditionRequired
	}
	if changes.Name != nil {
		name, ok := normalizeName(*changes.Name)
		if !ok {
			return nil, apperror.ServersNameInvalid
		}
		changes.Name = &name
	}
	if changes.HourlyRequestLimit != nil && *changes.HourlyRequestLimit <= 0 {
		return nil, apperror.ServersRequestLimitInvalid
	}

	current, err := s.FetchOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Version != *version {
		return nil, apperror.ServersAlreadyUpdated
	}
	if changes.Empty() {
		return current, nil
	}

	if changes.Name != nil {
		existing, err := s.repository.FetchByName(ctx, *changes.Name, common.StatusActive)
		if err == nil && existing.ID != id {
			return nil, apperror.ServersNameExists
		}
		if err != nil && !errors.Is(err, ErrServerNotFound) {
			s.log.Error("failed to check server name uniqueness", zap.Error(err), zap.Stack("stack"))
			return nil, apperror.ServersUpdateFailed
		}
	}

	server, err := s.repository.Update(ctx, id, *version, changes)
	if err != nil {
		switch {
		case errors.Is(err, ErrServerNotFound):
			// Someone else bumped the version between the read and the write.
			return nil, apperror.ServersAlreadyUpdated
		case errors.Is(err, ErrServerExists):
			return nil, apperror.ServersNameExists
		}
		s.log.Error("failed to update server",
			zap.String("server_id", id.String()),
			zap.Error(err),
			zap.Stack("stack"))
		return nil, apperror.ServersUpdateFailed
	}
	return server, nil
}

func (s *Service) Delete(ctx reqctx.Context, id uuid.UUID) (*Server, error) {
	server, err := s.repository.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrServerNotFound) {
			return nil, apperror.ServersNotFound
		}
		s.log.Error("failed to delete server",
			zap.String("server_id", id.String()),
			zap.Error(err),
			zap.Stack("stack"))
		return nil, apperror.ServersDeletionFailed
	}

	s.events.Publish(ctx, events.ServerDeleted, server)
	return server, nil
}
