package domain

// Stage is one named, ordered step in a department-specific pipeline
type Stage struct {
	StageCode  string `json:"stageCode"`
	StageName  string `json:"stageName"`
	StageOrder int    `json:"stageOrder"`
	IsTerminal bool   `json:"isTerminal"`
	Department string `json:"department"`
}

// StageStatus classifies a pipeline node relative to a record's current stage
type StageStatus string

// StageStatus constants
const (
	StageCompleted StageStatus = "COMPLETED"
	StageCurrent   StageStatus = "CURRENT"
	StageTerminal  StageStatus = "TERMINAL"
	StageUpcoming  StageStatus = "UPCOMING"
)
