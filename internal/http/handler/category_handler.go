package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/http/middleware"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/http/response"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/service"
)

const (
	MsgCategoryFetched = "Category fetched"
	MsgCategoryCreated = "Category created successfully"
	MsgCategoryUpdated = "Category update successfully"
)

type CategoryHandler struct {
	svc service.CategoryServiceInterface
}

func NewCategoryHandler(svc service.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), pageParam(r))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, r, http.StatusOK, MsgCategoryFetched, response.Fields{
		"category":      page.Categories,
		"totalCategory": page.Total,
	})
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, r, http.StatusOK, MsgCategoryFetched, response.Fields{"category": category})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, r, err)
		return
	}
	category, err := h.svc.Create(r.Context(), in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	auditCatalog(r, "category.create", "category", category.ID)
	response.Message(w, r, http.StatusCreated, MsgCategoryCreated, response.Fields{"category": category})
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, r, err)
		return
	}
	category, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	auditCatalog(r, "category.update", "category", category.ID)
	response.Message(w, r, http.StatusOK, MsgCategoryUpdated, response.Fields{"category": category})
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.Error(w, r, err)
		return
	}
	auditCatalog(r, "category.delete", "category", id)
	response.NoContent(w)
}

func auditCatalog(r *http.Request, event, targetType, targetID string) {
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   event,
		ActorUserID: middleware.UserIDFromContext(r.Context()),
		TargetType:  targetType,
		TargetID:    targetID,
		Action:      event[len(targetType)+1:],
		Outcome:     "success",
	})
}
