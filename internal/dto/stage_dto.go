package dto

import "crm-admin-gateway/internal/domain"

// DepartmentsResponse lists the departments that carry pipelines. Warning is
// set when the fetch degraded to an empty list.
type DepartmentsResponse struct {
	Departments []string `json:"departments"`
	Warning     string   `json:"warning,omitempty"`
}

// PipelineNode is one rendered stage of the pipeline widget
type PipelineNode struct {
	StageCode  string             `json:"stageCode"`
	StageName  string             `json:"stageName"`
	StageOrder int                `json:"stageOrder"`
	IsTerminal bool               `json:"isTerminal"`
	Status     domain.StageStatus `json:"status"`
	// Clickable reports whether click-to-advance is offered for this node
	Clickable bool `json:"clickable"`
}

// PipelineResponse is the classified pipeline for one record
type PipelineResponse struct {
	Department   string         `json:"department"`
	CurrentStage string         `json:"currentStage,omitempty"`
	Nodes        []PipelineNode `json:"nodes"`
}

// TransitionRequest represents a request to move a deal to a new stage
type TransitionRequest struct {
	NewStage   string `json:"newStage" binding:"required,max=100"`
	Department string `json:"department" binding:"required,max=100"`
}
