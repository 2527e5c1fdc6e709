package server

import "github.com/jywlabs/prdwiz/internal/prd"

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type interviewRequest struct {
	Brief   string     `json:"brief"`
	History []prd.Turn `json:"history"`
}

type interviewResponse struct {
	Message string   `json:"message"`
	Done    bool     `json:"done"`
	Summary []string `json:"summary"`
}

// Interview and InterviewSummary are pointers so an absent field can be
// told apart from an empty list.
type previewRequest struct {
	Brief       string       `json:"brief"`
	Interview   *[]prd.Turn  `json:"interview"`
	Feedback    prd.Feedback `json:"feedback"`
	ProjectName string       `json:"projectName,omitempty"`
	FeatureName string       `json:"featureName,omitempty"`
}

type previewResponse struct {
	Features    []prd.Feature   `json:"features"`
	UserStories []prd.UserStory `json:"userStories"`
}

type generateRequest struct {
	Brief            string                 `json:"brief"`
	Interview        *[]prd.Turn            `json:"interview"`
	InterviewSummary *[]string              `json:"interviewSummary"`
	Feedback         prd.Feedback           `json:"feedback"`
	FeatureOverrides []*prd.FeatureOverride `json:"featureOverrides,omitempty"`
}

// generateResponse is the synthesized PRD plus its rendered artifacts.
type generateResponse struct {
	*prd.Data
	FeatureName string `json:"featureName"`
	Markdown    string `json:"markdown"`
	PRDJSON     string `json:"prdJson"`
	Prompt      string `json:"prompt"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}
