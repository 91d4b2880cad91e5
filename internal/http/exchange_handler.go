package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

type ExchangeHandler struct {
	base
	exchange *service.ExchangeService
}

func NewExchangeHandler(b base, exchange *service.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{base: b, exchange: exchange}
}

type PickupRequestDTO struct {
	OrderDetailID   int64                 `json:"order_detail_id"`
	InferenceStatus domain.ConditionGrade `json:"inference_status"`
	PickupDate      string                `json:"pickup_date"`
	PickupTime      string                `json:"pickup_time"`
}

type PickupWindowDTO struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// POST /api/v1/exchange/inference (multipart: image, order_detail_id)
func (h *ExchangeHandler) Inference(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid multipart body")
		return
	}
	detailID, err := strconv.ParseInt(r.FormValue("order_detail_id"), 10, 64)
	if err != nil || detailID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_detail_id", "order_detail_id must be a positive integer")
		return
	}

	photo, err := readPhoto(r)
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "unreadable image")
		return
	}

	result, err := h.exchange.GradeCondition(ctx, detailID, photo)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func readPhoto(r *http.Request) (service.Photo, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return service.Photo{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return service.Photo{}, err
	}
	return service.Photo{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// GET /api/v1/exchange/pickup-window
func (h *ExchangeHandler) PickupWindow(w http.ResponseWriter, r *http.Request) {
	first, last := h.exchange.PickupWindow()
	h.respondJSON(w, http.StatusOK, PickupWindowDTO{
		First: first.Format("2006-01-02"),
		Last:  last.Format("2006-01-02"),
	})
}

// POST /api/v1/exchange/pickup
func (h *ExchangeHandler) SchedulePickup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req PickupRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.OrderDetailID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_detail_id", "order_detail_id must be a positive integer")
		return
	}
	switch req.InferenceStatus {
	case domain.GradeResale, domain.GradeRefurb, domain.GradeScrap:
	default:
		h.respondError(w, http.StatusBadRequest, "invalid_grade", "inference_status must be resale, refurb or scrap")
		return
	}

	resp, err := h.exchange.SchedulePickup(ctx, service.PickupOptions{
		OrderDetailID: req.OrderDetailID,
		Grade:         req.InferenceStatus,
		Date:          req.PickupDate,
		Time:          req.PickupTime,
	})
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}
