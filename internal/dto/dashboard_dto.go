package dto

// DashboardResponse aggregates a user's learning statistics.
type DashboardResponse struct {
	TotalSubmissions  int64                   `json:"total_submissions"`
	Passed            int64                   `json:"passed"`
	Failed            int64                   `json:"failed"`
	Errors            int64                   `json:"errors"`
	PassRate          float64                 `json:"pass_rate"`
	Radar             CapabilityRadarResponse `json:"radar"`
	RecentSubmissions []CodeSubmissionResponse `json:"recent_submissions"`
}

// UploadResponse reports the stored location of an uploaded file.
type UploadResponse struct {
	URL string `json:"url"`
}
