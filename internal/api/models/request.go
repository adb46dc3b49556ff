package models

// Bid types accepted by POST /api/v1/runs.
const (
	BidTypeDayAhead = "D-X"
	BidTypeIntraday = "IDA-1"
)

// RunRequest represents the request body for starting a compilation
type RunRequest struct {
	BidType     string `json:"bid_type" binding:"required"`     // "D-X" or "IDA-1"
	TradingDate string `json:"trading_date" binding:"required"` // dd/mm/YYYY
	Lag         string `json:"lag,omitempty"`                   // D-X only; default from today's date

	UploadSQL      bool `json:"upload_sql,omitempty"`
	CreateBriefing bool `json:"create_briefing,omitempty"`
	SendEmail      bool `json:"send_email,omitempty"`
	FridayMode     bool `json:"friday_mode,omitempty"`
}
