package dto

type HealthDTO struct {
	Status      string `json:"status"`
	Application string `json:"application"`
	Timestamp   int64  `json:"timestamp"`
	Version     string `json:"version"`
}

type ActuatorHealthDTO struct {
	Status string `json:"status"`
}

type ActuatorInfoDTO struct {
	Application string `json:"application"`
	Version     string `json:"version"`
}
