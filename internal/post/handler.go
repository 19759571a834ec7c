package post

import (
	"net/http"

	"userpost-service/internal/shared/httpx"
	"userpost-service/internal/shared/validate"
)

type Handler struct{ svc Service }

func NewHandler(s Service) *Handler { return &Handler{svc: s} }

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	in, err := httpx.Decode[CreateReq](r)
	if err != nil {
		return err
	}
	if err := validate.Struct(in); err != nil {
		return err
	}
	p, err := h.svc.Create(r.Context(), *in.UserID, *in.Content)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, ToResponse(p), http.StatusOK)
	return nil
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) error {
	id, err := httpx.PathInt(r, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, ToResponse(p), http.StatusOK)
	return nil
}
