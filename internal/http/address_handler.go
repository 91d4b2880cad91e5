package http

import (
	"net/http"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

type AddressHandler struct {
	base
	addresses *service.AddressService
}

func NewAddressHandler(b base, addresses *service.AddressService) *AddressHandler {
	return &AddressHandler{base: b, addresses: addresses}
}

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	list, err := h.addresses.List(ctx)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	if list == nil {
		list = make([]domain.Address, 0)
	}
	h.respondJSON(w, http.StatusOK, list)
}

func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	id, ok := h.addressID(w, r)
	if !ok {
		return
	}
	a, err := h.addresses.Get(ctx, id)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, a)
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req domain.Address
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Line1 == "" || req.City == "" || req.Pincode == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_address", "line1, city and pincode are required")
		return
	}

	a, err := h.addresses.Create(ctx, req)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, a)
}

func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	id, ok := h.addressID(w, r)
	if !ok {
		return
	}
	var req domain.Address
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	a, err := h.addresses.Update(ctx, id, req)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, a)
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	id, ok := h.addressID(w, r)
	if !ok {
		return
	}
	if err := h.addresses.Delete(ctx, id); err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AddressHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	id, ok := h.addressID(w, r)
	if !ok {
		return
	}
	if err := h.addresses.SetDefault(ctx, id); err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]int64{"default_address": id})
}

func (h *AddressHandler) addressID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathID(r, "address_id")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "invalid_address_id", "address_id must be a positive integer")
	}
	return id, ok
}
