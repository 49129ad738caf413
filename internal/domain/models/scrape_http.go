package models

// ScrapeRequest is the body of a scrape call. Quarter is "YYYYQn";
// empty means the latest completed quarter.
type ScrapeRequest struct {
	Funds           []string `json:"funds"`
	CIKs            []string `json:"ciks"`
	Quarter         string   `json:"quarter"`
	OnlyFirstTime   bool     `json:"only_first_time"`
	MinHoldings     *int     `json:"min_holdings" validate:"omitempty,gte=0"`
	MaxHoldings     *int     `json:"max_holdings" validate:"omitempty,gte=0"`
	BetweenHoldings []int    `json:"between_holdings" validate:"omitempty,len=2"`
	Async           bool     `json:"async"`
}

type ScrapeResponse struct {
	Success          bool                `json:"success"`
	Message          string              `json:"message"`
	Results          []*ProcessingResult `json:"results"`
	TotalProcessed   int                 `json:"total_funds_processed"`
	TotalFirstTime   int                 `json:"total_first_time_filers"`
	ExecutionSeconds float64             `json:"execution_time"`
}

type QuartersResponse struct {
	CurrentQuarter    string   `json:"current_quarter"`
	AvailableQuarters []string `json:"available_quarters"`
}

// JobStatus is the externally visible state of an async scrape job.
type JobStatus struct {
	JobID     string          `json:"job_id"`
	Status    string          `json:"status"` // pending, processing, completed, failed
	Message   string          `json:"message"`
	Progress  float64         `json:"progress"`
	Processed int             `json:"processed"`
	Total     int             `json:"total"`
	Response  *ScrapeResponse `json:"response,omitempty"`
}
