package models

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type ScalpRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"omitempty,min=1,max=12"`
}

type RecentSignalsRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"omitempty,min=1,max=12"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
	Source string `query:"source" json:"source" default:"journal" validate:"oneof=journal archive"`
	Since  string `query:"since" json:"since" validate:"omitempty,max=40"`
}
