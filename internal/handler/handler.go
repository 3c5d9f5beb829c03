// Package handler provides HTTP request handlers for the catalog API.
package handler

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ImportRequest is the body of an import request.
type ImportRequest struct {
	Path string `json:"path"`
}

// BackupRequest is the body of a backup request.
type BackupRequest struct {
	Dir      string `json:"dir,omitempty"`
	FileName string `json:"file_name,omitempty"`
}
