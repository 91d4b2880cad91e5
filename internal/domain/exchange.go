package domain

type ConditionGrade string

const (
	GradeResale ConditionGrade = "resale"
	GradeRefurb ConditionGrade = "refurb"
	GradeScrap  ConditionGrade = "scrap"
)

// NeedsPickup reports whether the graded item must be collected from the
// customer. Scrapped items are exchanged without a pickup.
func (g ConditionGrade) NeedsPickup() bool {
	return g != GradeScrap
}

type InferenceResult struct {
	Status     ConditionGrade `json:"status"`
	Confidence float64        `json:"confidence,omitempty"`
	Message    string         `json:"message,omitempty"`
}

type PickupRequest struct {
	OrderDetailID   int64          `json:"order_detail_id"`
	InferenceStatus ConditionGrade `json:"inference_status"`
	PickupDate      *string        `json:"pickup_date"`
	PickupTime      *string        `json:"pickup_time"`
}

type PickupResponse struct {
	Message    string `json:"message"`
	PickupDate string `json:"pickup_date,omitempty"`
	PickupTime string `json:"pickup_time,omitempty"`
}
