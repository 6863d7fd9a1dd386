package accounts

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

// Routes mounts the account endpoints under api.AccountsPath.
func (h *Handler) Routes(r chi.Router) {
	r.Route(api.AccountsPath, func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.fetchMany)
		r.Get("/{account_id}", h.fetchOne)
		r.Patch("/{account_id}", h.partialUpdate)
		r.Delete("/{account_id}", h.delete)
		r.Put("/{account_id}/password", h.changePassword)
	})
}

type createRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

type updateRequest struct {
	Identifier *string `json:"identifier"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := api.DecodeBody(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	account, err := h.service.Create(h.contexts.New(r.Context()), CreateRequest{
		Identifier: req.Identifier,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
	})
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteSuccess(w, http.StatusCreated, account)
}

func (h *Handler) fetchMany(w http.ResponseWriter, r *http.Request) {
	page, err := api.ParsePagination(r)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	accounts, err := h.service.FetchMany(h.contexts.New(r.Context()), page)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteList(w, accounts, page)
}

func (h *Handler) fetchOne(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "account_id")
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	account, err := h.service.FetchOne(h.contexts.New(r.Context()), id)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, account)
}

func (h *Handler) partialUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "account_id")
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	var req updateRequest
	if err := api.DecodeBody(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	account, err := h.service.PartialUpdate(h.contexts.New(r.Context()), id, Changes{
		Identifier: req.Identifier,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
	})
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, account)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "account_id")
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	account, err := h.service.Delete(h.contexts.New(r.Context()), id)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, account)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "account_id")
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	var req passwordRequest
	if err := api.DecodeBody(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	if err := h.service.ChangePassword(h.contexts.New(r.Context()), id, req.Password); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
