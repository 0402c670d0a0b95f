package models

// RegisterDownloadRequest registers a short-lived download token bound to a
// target URL and filename.
type RegisterDownloadRequest struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// RegisterDownloadResponse returns the issued token and its expiry.
type RegisterDownloadResponse struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}
