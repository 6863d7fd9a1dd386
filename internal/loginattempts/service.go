package loginattempts

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/apperror"
	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/reqctx"
	"github.com/elskow/registry-auth/internal/validation"
)

type Service struct {
	log         *zap.Logger
	identifiers *validation.IdentifierValidator
	repository  Repository
}

func NewService(log *zap.Logger, identifiers *validation.IdentifierValidator, repo Repository) *Service {
	return &Service{
		log:         log,
		identifiers: identifiers,
		repository:  repo,
	}
}

// Record stores identifier exactly as supplied, malformed or not. Values wider
// than their column are cut to fit so oversized input is still audited.
func (s *Service) Record(ctx reqctx.Context, identifier, ipAddress, userAgent string) (*LoginAttempt, error) {
	identifier = truncate(identifier, MaxIdentifierLength)
	ipAddress = truncate(ipAddress, MaxIPAddressLength)

	attempt, err := s.repository.Create(ctx, identifier, ipAddress, userAgent)
	if err != nil {
		s.log.Error("failed to record login attempt",
			zap.String("ip_address", ipAddress),
			zap.Error(err),
			zap.Stack("stack"))
		return nil, apperror.LoginAttemptsCreationFailed
	}
	return attempt, nil
}

// Create records an attempt for a well-formed identifier, stored in canonical form.
func (s *Service) Create(ctx reqctx.Context, identifier, ipAddress, userAgent string) (*LoginAttempt, error) {
	normalized, ok := s.identifiers.Normalize(identifier)
	if !ok {
		return nil, apperror.LoginAttemptsIdentifierInvalid
	}
	return s.Record(ctx, normalized, ipAddress, userAgent)
}

func (s *Service) FetchOne(ctx reqctx.Context, id uuid.UUID) (*LoginAttempt, error) {
	attempt, err := s.repository.FetchByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrLoginAttemptNotFound) {
			return nil, apperror.LoginAttemptsNotFound
		}
		return nil, err
	}
	return attempt, nil
}

// FetchMany matches identifier both as typed and in canonical form, since
// malformed attempts are stored verbatim.
func (s *Service) FetchMany(ctx reqctx.Context, identifier, ipAddress *string, page common.Pagination) ([]LoginAttempt, error) {
	filter := Filter{IPAddress: ipAddress}
	if identifier != nil {
		raw := strings.TrimSpace(*identifier)
		filter.Identifiers = []string{raw}
		if normalized, ok := s.identifiers.Normalize(raw); ok && normalized != raw {
			filter.Identifiers = append(filter.Identifiers, normalized)
		}
	}
	return s.repository.FetchMany(ctx, filter, page)
}

// truncate cuts s to at most n runes, the unit Postgres VARCHAR(n) counts in.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
