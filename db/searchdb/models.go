package searchdb

import "time"

// Record is one normalized OSINT data point. Records are immutable once
// indexed; re-importing a value writes a new document.
type Record struct {
	Type           string    `json:"type"`
	Value          string    `json:"value"`
	Source         string    `json:"source"`
	AdditionalInfo string    `json:"additional_info"`
	IndexedAt      time.Time `json:"indexed_at"`
}

type Hit struct {
	Type           string  `json:"type"`
	Value          string  `json:"value"`
	Source         string  `json:"source"`
	AdditionalInfo string  `json:"additional_info"`
	Score          float64 `json:"score"`
}
