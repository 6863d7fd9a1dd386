package loginattempts

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/api"
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
	r.Route(api.LoginAttemptsPath, func(r chi.Router) {
		r.Get("/", h.fetchMany)
		r.Get("/{login_attempt_id}", h.fetchOne)
	})
}

func (h *Handler) fetchOne(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "login_attempt_id")
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	attempt, err := h.service.FetchOne(h.contexts.New(r.Context()), id)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, attempt)
}

func (h *Handler) fetchMany(w http.ResponseWriter, r *http.Request) {
	page, err := api.ParsePagination(r)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	attempts, err := h.service.FetchMany(
		h.contexts.New(r.Context()),
		api.QueryString(r, "identifier"),
		api.QueryString(r, "ip_address"),
		page,
	)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteList(w, attempts, page)
}
