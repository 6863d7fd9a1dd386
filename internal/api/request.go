package api

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/elskow/registry-auth/internal/apperror"
	"github.com/elskow/registry-auth/internal/common"
)

const maxBodyBytes = 1 << 20

// DecodeBody reads exactly one JSON value with no unknown fields.
func DecodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.RequestBodyInvalid
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperror.RequestBodyInvalid
	}
	return nil
}

// ParsePagination reads page and page_size. Both default when absent.
func ParsePagination(r *http.Request) (common.Pagination, error) {
	query := r.URL.Query()

	page, err := parseIntDefault(query.Get("page"), 1)
	if err != nil || page < 1 {
		return common.Pagination{}, apperror.RequestPageInvalid
	}
	pageSize, err := parseIntDefault(query.Get("page_size"), common.DefaultPageSize)
	if err != nil || pageSize < 1 || pageSize > common.MaxPageSize {
		return common.Pagination{}, apperror.RequestPageSizeInvalid
	}

	return common.NewPagination(page, pageSize), nil
}

func parseIntDefault(raw string, fallback int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// PathUUID parses the named chi URL parameter.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperror.RequestIDInvalid
	}
	return id, nil
}

// ClientIP prefers the Cloudflare client header and falls back to the peer
// address.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

// QueryString returns a pointer to the query value, or nil when it is absent.
func QueryString(r *http.Request, name string) *string {
	if !r.URL.Query().Has(name) {
		return nil
	}
	v := r.URL.Query().Get(name)
	return &v
}
