package dto

type DashboardStatsDTO struct {
	TotalUsers   int    `json:"totalUsers"`
	ActiveUsers  int    `json:"activeUsers"`
	SystemHealth string `json:"systemHealth"`
}

type SampleDataDTO struct {
	DashboardStats DashboardStatsDTO `json:"dashboardStats"`
	Notifications  []string          `json:"notifications"`
}

type ProtectedDataDTO struct {
	Message     string        `json:"message"`
	User        string        `json:"user"`
	Timestamp   string        `json:"timestamp"`
	Authorities []string      `json:"authorities"`
	AccessLevel string        `json:"accessLevel"`
	SampleData  SampleDataDTO `json:"sampleData"`
}

type ServerTimeDTO struct {
	ServerTime  string `json:"serverTime"`
	Timezone    string `json:"timezone"`
	RequestedBy string `json:"requestedBy"`
}
