package domain

import "strings"

type Address struct {
	ID        int64  `json:"id,omitempty"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Pincode   string `json:"pincode"`
	IsDefault bool   `json:"is_default"`
}

func (a Address) String() string {
	street := a.Line1
	if a.Line2 != "" {
		street += ", " + a.Line2
	}
	parts := []string{street, a.City, a.State, a.Country}
	return strings.Join(parts, ", ") + " - " + a.Pincode
}
