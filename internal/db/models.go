package db

// ScanRecord represents a row in the scans table
type ScanRecord struct {
	ID              string `json:"id"` // UUID
	Source          string `json:"source"`
	CreatedAt       int64  `json:"created_at"` // Unix millis
	NodeCount       int    `json:"node_count"`
	ConnectionCount int    `json:"connection_count"`
}
