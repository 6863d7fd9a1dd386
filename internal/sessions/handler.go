package sessions

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
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
	r.Route(api.SessionsPath, func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.fetchMany)
		r.Get("/{session_id}", h.fetchOne)
		r.Patch("/{session_id}", h.partialUpdate)
		r.Delete("/{session_id}", h.delete)
	})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type updateRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := api.DecodeBody(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	result, err := h.service.Create(h.contexts.New(r.Context()), LoginRequest{
		Identifier: req.Identifier,
		Password:   req.Password,
		IPAddress:  api.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	w.Header().Set("Location", api.SessionsPath+"/"+result.ID.String())
	api.WriteSuccess(w, http.StatusCreated, result)
}

func (h *Handler) fetchOne(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "session_id")
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	session, err := h.service.FetchOne(h.contexts.New(r.Context()), id)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, session)
}

func (h *Handler) fetchMany(w http.ResponseWriter, r *http.Request) {
	page, err := api.ParsePagination(r)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	var accountID *uuid.UUID
	if raw := api.QueryString(r, "account_id"); raw != nil {
		id, err := uuid.Parse(*raw)
		if err != nil {
			api.WriteError(w, h.log, apperror.RequestIDInvalid)
			return
		}
		accountID = &id
	}

	sessions, err := h.service.FetchMany(h.contexts.New(r.Context()), accountID, page)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteList(w, sessions, page)
}

func (h *Handler) partialUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "session_id")
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	var req updateRequest
	if err := api.DecodeBody(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	session, err := h.service.PartialUpdate(h.contexts.New(r.Context()), id, req.ExpiresAt)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, session)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "session_id")
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
