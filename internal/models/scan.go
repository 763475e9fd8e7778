package models

import "time"

// Input types recorded with each scan.
const (
	InputTypeURL   = "url"
	InputTypeEmail = "email"
	InputTypeHTML  = "html"
)

// Classification is the combined output of the binary and multi-class models
// for a single piece of text. BinaryScore is nil in multi-only mode where the
// binary model is never consulted.
type Classification struct {
	IsMalicious       bool     `json:"is_malicious"`
	BinaryScore       *float64 `json:"binary_score"`
	ThreatType        string   `json:"threat_type"`
	ThreatScore       float64  `json:"threat_score"`
	HighlightedTokens []string `json:"highlighted_tokens"`
}

// ScanResult is a persisted classification record. Rows are immutable after
// insert; there is no update or delete path.
type ScanResult struct {
	ID          int64     `db:"id" json:"id"`
	InputType   string    `db:"input_type" json:"input_type"`
	RawName     string    `db:"raw_name" json:"raw_name"`
	Content     string    `db:"content" json:"content"`
	IsMalicious bool      `db:"is_malicious" json:"is_malicious"`
	ThreatType  string    `db:"threat_type" json:"threat_type"`
	ThreatScore float64   `db:"threat_score" json:"threat_score"`
	BinaryScore *float64  `db:"binary_score" json:"binary_score"`
	Tokens      string    `db:"tokens" json:"tokens"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ScanSummary is the list view of a scan, without the stored content.
type ScanSummary struct {
	ID          int64     `db:"id" json:"id"`
	InputType   string    `db:"input_type" json:"input_type"`
	RawName     string    `db:"raw_name" json:"raw_name"`
	ThreatType  string    `db:"threat_type" json:"threat_type"`
	IsMalicious bool      `db:"is_malicious" json:"is_malicious"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
