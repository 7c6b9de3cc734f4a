package safety

// CreateReportRequest is the body of POST /reports
type CreateReportRequest struct {
	ItemType string `json:"itemType" binding:"required" example:"listing"`
	ItemID   string `json:"itemId" binding:"required" example:"65f1c0b2a1e4c3d2b1a09f87"`
	Reason   string `json:"reason" binding:"required" example:"Seller is asking for payment off-platform"`
}

// CreateReportResponse tells the reporter whether their report was merged
// into an existing open one
type CreateReportResponse struct {
	ReportID    string `json:"reportId"`
	ReportCount int    `json:"reportCount"`
	Aggregated  bool   `json:"aggregated"`
}
