package models

// StudentSummary is the rendered progress report for one student. It is
// derived from the gradebook and the current assignment configuration and is
// recomputed whenever the configuration changes.
type StudentSummary struct {
	StudentName    string   `json:"studentName"`
	TotalEarned    float64  `json:"totalEarned"`
	TotalAvailable float64  `json:"totalAvailable"`
	ProgressLines  []string `json:"progressLines"`
	UpcomingLines  []string `json:"upcomingLines"`
	Report         string   `json:"report"`
}
