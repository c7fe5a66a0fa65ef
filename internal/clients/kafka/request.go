package kafka

import "time"

// ExportRequest asks the exporter worker to build and deliver a user's export.
type ExportRequest struct {
	RequestID   string    `json:"requestId"`
	UserID      int64     `json:"userId"`
	RequestedAt time.Time `json:"requestedAt"`
}
