package servers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/api"
	"github.com/elskow/registry-auth/internal/apperror"
	"github.com/elskow/registry-auth/internal/reqctx"
)

type Handler struct {
	service  *Service
	contexts reqctx.Provider
	log      *zap.Logger
}

func NewHandler(service *Service, contexts reqctx.Provider, log *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		contexts: contexts,
		log:      log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route(api.ServersPath, func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.fetchMany)
		r.Get("/{server_id}", h.fetchOne)
		r.Patch("/{server_id}", h.partialUpdate)
		r.Delete("/{server_id}", h.delete)
	})
}

type createRequest struct {
	Name               string `json:"server_name"`
	HourlyRequestLimit int    `json:"hourly_request_limit"`
}

type updateRequest struct {
	Name               *string `json:"server_name"`
	HourlyRequestLimit *int    `json:"hourly_request_limit"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := api.DecodeBody(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	created, err := h.service.Create(h.contexts.New(r.Context()), req.Name, req.HourlyRequestLimit)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	w.Header().Set("Location", api.ServersPath+"/"+created.ID.String())
	w.Header().Set("ETag", created.ETag())
	api.WriteSuccess(w, http.StatusCreated, created)
}

func (h *Handler) fetchOne(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "server_id")
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	server, err := h.service.FetchOne(h.contexts.New(r.Context()), id)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	w.Header().Set("ETag", server.ETag())
	api.WriteSuccess(w, http.StatusOK, server)
}

func (h *Handler) fetchMany(w http.ResponseWriter, r *http.Request) {
	page, err := api.ParsePagination(r)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	servers, err := h.service.FetchMany(h.contexts.New(r.Context()), page)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteList(w, servers, page)
}

func (h *Handler) partialUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "server_id")
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	version, err := parseIfMatch(r.Header.Get("If-Match"))
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	var req updateRequest
	if err := api.DecodeBody(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	server, err := h.service.PartialUpdate(h.contexts.New(r.Context()), id, version, Changes{
		Name:               req.Name,
		HourlyRequestLimit: req.HourlyRequestLimit,
	})
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	w.Header().Set("ETag", server.ETag())
	api.WriteSuccess(w, http.StatusOK, server)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "server_id")
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	if _, err := h.service.Delete(h.contexts.New(r.Context()), id); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseIfMatch reads the version out of a single strong ETag. An absent
// header yields nil; anything unparseable can never match.
func parseIfMatch(header string) (*int64, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}
	unquoted, err := strconv.Unquote(header)
	if err != nil {
		return nil, apperror.ServersAlreadyUpdated
	}
	version, err := strconv.ParseInt(unquoted, 10, 64)
	if err != nil {
		return nil, apperror.ServersAlreadyUpdated
	}
	return &version, nil
}
