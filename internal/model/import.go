package model

import "time"

type ImportStatus string

const (
	ImportStatusUploaded ImportStatus = "UPLOADED"
	ImportStatusLoaded   ImportStatus = "LOADED"
	ImportStatusFailed   ImportStatus = "FAILED"
)

// Import tracks one bulk-import file through the async pipeline.
type Import struct {
	ID           int64        `json:"id" db:"id"`
	S3Path       string       `json:"s3_path" db:"s3_path"`
	Status       ImportStatus `json:"status" db:"status"`
	TotalRows    int          `json:"total_rows" db:"total_rows"`
	ErrorMessage *string      `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
