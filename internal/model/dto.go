package model

import "time"

// StudentRequest is the CRUD request body. Parcial3 stays optional; the
// average is computed server-side and any client value is ignored.
type StudentRequest struct {
	ID       string   `json:"id"`
	Nombre   string   `json:"nombre"`
	Parcial1 float64  `json:"parcial1"`
	Parcial2 float64  `json:"parcial2"`
	Parcial3 *float64 `json:"parcial3,omitempty"`
}

type ImportJob struct {
	ImportID int64  `json:"import_id"`
	S3Path   string `json:"s3_path"`
}

type ImportRequest struct {
	S3Path string `json:"s3_path" binding:"required"`
}

type ImportStatusResponse struct {
	ImportID     int64     `json:"import_id"`
	Status       string    `json:"status"`
	TotalRows    int       `json:"total_rows"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AuthTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
