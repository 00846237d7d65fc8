package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/site-report/internal/logging"
	"github.com/JakeFAU/site-report/internal/pipeline"
	"github.com/JakeFAU/site-report/internal/report"
)

type extractRequest struct {
	URL string `json:"url" validate:"required"`
}

type extractResponse struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	HTML        string    `json:"html"`
}

type reportRequest struct {
	URL          string `json:"url" validate:"required"`
	Instructions string `json:"instructions" validate:"max=8000"`
	MockContent  string `json:"mockContent"`
	Mode         string `json:"mode" validate:"omitempty,oneof=crawl direct"`
}

type reportResponse struct {
	HTML string `json:"html"`
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, badExtractRequestMessage(err))
		return
	}

	result, html, err := s.reporter.Extract(r.Context(), req.URL)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, extractResponse{
		URL:         result.URL.String(),
		Title:       result.Title,
		Description: result.Description,
		Content:     result.Content,
		Timestamp:   result.ExtractedAt,
		HTML:        html,
	})
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, badReportRequestMessage(err))
		return
	}

	out, err := s.reporter.Generate(r.Context(), report.Request{
		URL:          req.URL,
		Instructions: req.Instructions,
		MockContent:  req.MockContent,
		Mode:         report.Mode(req.Mode),
	})
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{HTML: out.String()})
}

func (s *Server) sample(w http.ResponseWriter, _ *http.Request) {
	if s.samples == nil {
		writeError(w, http.StatusNotFound, "sample reports are not available")
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{HTML: s.samples.Report()})
}

func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	logger := logging.FromContext(r.Context(), s.logger)
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("kind", string(pipeline.KindOf(err))),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}
	writeJSON(w, status, body)
}
