package models

// HistoryRequest bounds the trailing history query.
type HistoryRequest struct {
	N int `query:"n" default:"30" validate:"gte=1,lte=3650"`
}

// RunRequest triggers an on-demand assessment cycle. AsOf defaults to today.
type RunRequest struct {
	AsOf string `json:"as_of" validate:"omitempty,datetime=2006-01-02"`
}
