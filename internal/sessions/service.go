package sessions

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/apperror"
	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/credentials"
	"github.com/elskow/registry-auth/internal/events"
	"github.com/elskow/registry-auth/internal/loginattempts"
	"github.com/elskow/registry-auth/internal/reqctx"
	"github.com/elskow/registry-auth/internal/security"
	"github.com/elskow/registry-auth/internal/validation"
)

type Service struct {
	log         *zap.Logger
	identifiers *validation.IdentifierValidator
	hasher      security.PasswordHasher
	tokens      *security.TokenIssuer
	repository  Repository
	credentials credentials.Repository
	attempts    *loginattempts.Service
	events      events.Publisher
}

type Params struct {
	Log         *zap.Logger
	Identifiers *validation.IdentifierValidator
	Hasher      security.PasswordHasher
	Tokens      *security.TokenIssuer
	Repository  Repository
	Credentials credentials.Repository
	Attempts    *loginattempts.Service
	Events      events.Publisher
}

func NewService(p Params) *Service {
	return &Service{
		log:         p.Log,
		identifiers: p.Identifiers,
		hasher:      p.Hasher,
		tokens:      p.Tokens,
		repository:  p.Repository,
		credentials: p.Credentials,
		attempts:    p.Attempts,
		events:      p.Events,
	}
}

type LoginRequest struct {
	Identifier string
	Password   string
	IPAddress  string
	UserAgent  string
}

// Authenticated is a freshly minted session. Token is empty when bearer
// tokens are disabled.
type Authenticated struct {
	Session
	Token string `json:"token,omitempty"`
}

// Create logs in. Every call leaves exactly one login attempt behind, whatever
// the outcome. An unknown identifier and a wrong password produce the same
// error.
func (s *Service) Create(ctx reqctx.Context, req LoginRequest) (*Authenticated, error) {
	if _, err := s.attempts.Record(ctx, req.Identifier, req.IPAddress, req.UserAgent); err != nil {
		return nil, err
	}

	identifier, ok := s.identifiers.Normalize(req.Identifier)
	if !ok {
		return nil, apperror.SessionsIdentifierInvalid
	}
	if !validation.ValidPassword(req.Password) {
		return nil, apperror.SessionsPasswordInvalid
	}

	credential, err := s.credentials.FetchByIdentifier(ctx, identifier, common.StatusActive)
	if err != nil {
		if errors.Is(err, credentials.ErrCredentialNotFound) {
			s.hasher.VerifyDummy(req.Password)
			return nil, apperror.CredentialsIncorrect
		}
		s.log.Error("failed to fetch credential", zap.Error(err), zap.Stack("stack"))
		return nil, apperror.SessionsCreationFailed
	}

	if !s.hasher.Verify(req.Password, credential.Secret) {
		return nil, apperror.CredentialsIncorrect
	}

	session, err := s.repository.Create(ctx, uuid.New(), credential.AccountID)
	if err != nil {
		s.log.Error("failed to create session",
			zap.String("account_id", credential.AccountID.String()),
			zap.Error(err),
			zap.Stack("stack"))
		return nil, apperror.SessionsCreationFailed
	}

	result := &Authenticated{Session: *session}
	if s.tokens.Enabled() {
		token, err := s.tokens.Issue(session.ID.String(), session.AccountID.String(), session.ExpiresAt)
		if err != nil {
			s.log.Error("failed to sign session token", zap.Error(err), zap.Stack("stack"))
			return nil, apperror.SessionsCreationFailed
		}
		result.Token = token
	}

	s.events.Publish(ctx, events.SessionCreated, session)
	return result, nil
}

func (s *Service) FetchOne(ctx reqctx.Context, id uuid.UUID) (*Session, error) {
	session, err := s.repository.FetchOne(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, apperror.SessionsNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *Service) FetchMany(ctx reqctx.Context, accountID *uuid.UUID, page common.Pagination) ([]Session, error) {
	return s.repository.FetchMany(ctx, accountID, page)
}

// PartialUpdate moves the session expiry. The new expiry must lie in the future.
func (s *Service) PartialUpdate(ctx reqctx.Context, id uuid.UUID, expiresAt *time.Time) (*Session, error) {
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return nil, apperror.SessionsExpiresAtInvalid
	}

	session, err := s.repository.Update(ctx, id, expiresAt)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, apperror.SessionsNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *Service) Delete(ctx reqctx.Context, id uuid.UUID) (*Session, error) {
	session, err := s.repository.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, apperror.SessionsNotFound
		}
		return nil, err
	}
	return session, nil
}

// Authenticate resolves a bearer token to a live session.
func (s *Service) Authenticate(ctx reqctx.Context, token string) (*Session, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperror.SessionsUnauthorized
	}
	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, apperror.SessionsUnauthorized
	}

	session, err := s.repository.FetchOne(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, apperror.SessionsUnauthorized
		}
		return nil, err
	}
	if session.AccountID.String() != claims.Subject {
		return nil, apperror.SessionsUnauthorized
	}
	return session, nil
}
