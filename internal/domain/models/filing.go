package models

// ParseStatus describes the outcome of parsing a filing's information table.
type ParseStatus string

const (
	ParseOK           ParseStatus = "ok"
	ParseWithWarnings ParseStatus = "ok_with_warnings"
	ParseFailed       ParseStatus = "failed"
)

// ParseWarning records one skipped information-table entry.
type ParseWarning struct {
	Entry  int    `json:"entry"` // 1-based position in the document
	Reason string `json:"reason"`
}
