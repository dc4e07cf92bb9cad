package models

type MonthCount struct {
	Year  int    `json:"year"`
	Month string `json:"month"`
	Count int    `json:"count"`
}

// DashboardStats is computed over the workflows the caller can see.
type DashboardStats struct {
	TotalUsers         int            `json:"totalUsers,omitempty"`
	TotalWorkflows     int            `json:"totalWorkflows"`
	PendingReviews     int            `json:"pendingReviews"`
	ActiveWorkflows    int            `json:"activeWorkflows"`
	StatusDistribution map[string]int `json:"statusDistribution"`
	MonthlyGrowth      []MonthCount   `json:"monthlyGrowth"`
}
