package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jywlabs/prdwiz/internal/prd"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, healthResponse{Status: "ok"})
}

func (s *Server) handleInterview(w http.ResponseWriter, r *http.Request) {
	var req interviewRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Brief) == "" {
		s.writeError(w, "brief is required", http.StatusBadRequest)
		return
	}

	step, err := s.gen.InterviewStep(r.Context(), prd.StepInput{Brief: req.Brief, History: req.History})
	if err != nil {
		s.fail(w, r, "failed to get next question", err)
		return
	}

	summary := []string(step.Summary)
	if summary == nil {
		summary = []string{}
	}
	s.writeJSON(w, interviewResponse{Message: step.Message, Done: bool(step.Done), Summary: summary})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !s.decode(w, r, &req) {
		return
	}
	if msg := missingField(req.Brief, req.Interview); msg != "" {
		s.writeError(w, msg, http.StatusBadRequest)
		return
	}

	names := prd.Names{
		ProjectName: firstNonEmpty(req.ProjectName, prd.DefaultProjectName),
		FeatureName: firstNonEmpty(req.FeatureName, prd.DefaultFeatureName),
		Description: req.Brief,
	}
	data, err := s.gen.Synthesize(r.Context(), names, prd.AnswersInput{
		Brief:    req.Brief,
		History:  *req.Interview,
		Feedback: req.Feedback.Lines(),
	})
	if err != nil {
		s.fail(w, r, "failed to generate preview", err)
		return
	}

	s.writeJSON(w, previewResponse{Features: data.Features, UserStories: data.UserStories})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if msg := missingField(req.Brief, req.Interview); msg != "" {
		s.writeError(w, msg, http.StatusBadRequest)
		return
	}
	if req.InterviewSummary == nil {
		s.writeError(w, "interviewSummary is required", http.StatusBadRequest)
		return
	}

	names, err := s.gen.InferNames(r.Context(), req.Brief)
	if err != nil {
		s.fail(w, r, "failed to generate PRD", err)
		return
	}
	data, err := s.gen.Synthesize(r.Context(), names, prd.AnswersInput{
		Brief:    req.Brief,
		History:  *req.Interview,
		Summary:  *req.InterviewSummary,
		Feedback: req.Feedback.Lines(),
	})
	if err != nil {
		s.fail(w, r, "failed to generate PRD", err)
		return
	}
	final, artifacts, err := prd.Finalize(names.FeatureName, data, req.FeatureOverrides)
	if err != nil {
		s.fail(w, r, "failed to render PRD", err)
		return
	}

	s.writeJSON(w, generateResponse{
		Data:        final,
		FeatureName: names.FeatureName,
		Markdown:    artifacts.Markdown,
		PRDJSON:     string(artifacts.JSON),
		Prompt:      artifacts.Prompt,
	})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, "audio file is too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.writeError(w, "audio file is required", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, "audio file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if s.transcriber == nil {
		s.fail(w, r, "failed to transcribe audio", errors.New("no transcriber configured"))
		return
	}
	text, err := s.transcriber.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		s.fail(w, r, "failed to transcribe audio", err)
		return
	}

	s.writeJSON(w, transcribeResponse{Text: text})
}

// missingField names the first absent transcript field, or returns "".
// An empty interview list is present.
func missingField(brief string, interview *[]prd.Turn) string {
	switch {
	case strings.TrimSpace(brief) == "":
		return "brief is required"
	case interview == nil:
		return "interview is required"
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
