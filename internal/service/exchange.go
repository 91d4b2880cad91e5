package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
)

const (
	pickupDateLayout = "2006-01-02"
	pickupTimeLayout = "15:04"
	maxPickupDays    = 7
)

var (
	earliestPickup = 9 * time.Hour
	latestPickup   = 21 * time.Hour
)

// Photo is the product image sent for condition grading.
type Photo struct {
	FileName    string
	ContentType string
	Data        []byte
}

type PickupOptions struct {
	OrderDetailID int64
	Grade         domain.ConditionGrade
	Date          string // YYYY-MM-DD
	Time          string // HH:MM
}

type ExchangeService struct {
	api API
	now func() time.Time
}

func NewExchangeService(api API) *ExchangeService {
	return &ExchangeService{api: api, now: time.Now}
}

// GradeCondition uploads a photo of the returned item and returns the
// model's resale, refurb or scrap verdict.
func (s *ExchangeService) GradeCondition(ctx context.Context, orderDetailID int64, photo Photo) (*domain.InferenceResult, error) {
	if len(photo.Data) == 0 {
		return nil, ErrMissingImage
	}
	name := photo.FileName
	if name == "" {
		name = "image.jpg"
	}

	form := gateway.Multipart{
		Fields: map[string]string{"order_detail_id": strconv.FormatInt(orderDetailID, 10)},
		Files: []gateway.FilePart{{
			FieldName:   "image",
			FileName:    name,
			ContentType: photo.ContentType,
			Data:        photo.Data,
		}},
	}

	var result domain.InferenceResult
	if err := s.api.PostMultipart(ctx, "/inference/", form, &result); err != nil {
		return nil, fmt.Errorf("grade condition of item %d: %w", orderDetailID, err)
	}
	return &result, nil
}

// SchedulePickup confirms the exchange. Items that need collecting must
// carry a date between tomorrow and a week from today and a time within
// working hours; scrapped items are sent without either.
func (s *ExchangeService) SchedulePickup(ctx context.Context, opts PickupOptions) (*domain.PickupResponse, error) {
	req := domain.PickupRequest{
		OrderDetailID:   opts.OrderDetailID,
		InferenceStatus: opts.Grade,
	}

	if opts.Date != "" {
		if err := s.validateDate(opts.Date); err != nil {
			return nil, err
		}
		req.PickupDate = &opts.Date
	}
	if opts.Time != "" {
		if err := validateTime(opts.Time); err != nil {
			return nil, err
		}
		req.PickupTime = &opts.Time
	}
	if opts.Grade.NeedsPickup() && (req.PickupDate == nil || req.PickupTime == nil) {
		return nil, ErrPickupRequired
	}

	var resp domain.PickupResponse
	if err := s.api.Post(ctx, "/exchange/process-pickup/", req, &resp); err != nil {
		return nil, fmt.Errorf("schedule pickup for item %d: %w", opts.OrderDetailID, err)
	}
	return &resp, nil
}

// PickupWindow is the first and last selectable pickup day.
func (s *ExchangeService) PickupWindow() (time.Time, time.Time) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, 1), today.AddDate(0, 0, maxPickupDays)
}

func (s *ExchangeService) validateDate(value string) error {
	first, last := s.PickupWindow()
	d, err := time.ParseInLocation(pickupDateLayout, value, first.Location())
	if err != nil {
		return fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrPickupDateOutOfRange, value)
	}
	if d.Before(first) || d.After(last) {
		return fmt.Errorf("%w: %s", ErrPickupDateOutOfRange, value)
	}
	return nil
}

func validateTime(value string) error {
	t, err := time.Parse(pickupTimeLayout, value)
	if err != nil {
		return fmt.Errorf("%w: %q is not an HH:MM time", ErrPickupTimeOutOfRange, value)
	}
	offset := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	if offset < earliestPickup || offset > latestPickup {
		return fmt.Errorf("%w: %s", ErrPickupTimeOutOfRange, value)
	}
	return nil
}
