package auditor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seoscope/seo-audit/internal/model"
	"github.com/seoscope/seo-audit/internal/platform/errs"
	"github.com/seoscope/seo-audit/internal/platform/middleware"
	"github.com/seoscope/seo-audit/internal/store"
)

const (
	auditTimeout = 60 * time.Second
	checkTimeout = 30 * time.Second

	maxRequestBody = 1 << 20
)

// Transport handles HTTP requests for the audit service.
type Transport struct {
	service *Service
	logger  *slog.Logger
}

// NewTransport creates an HTTP transport backed by the given service.
func NewTransport(service *Service, logger *slog.Logger) *Transport {
	return &Transport{service: service, logger: logger}
}

// Router builds the chi router with middleware and all routes attached.
func (t *Transport) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(t.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		t.renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/audit", t.handleAudit)
		r.Get("/meta", t.handleMeta)
		r.Get("/headings", t.handleHeadings)
		r.Get("/wordcount", t.handleWordCount)
		r.Get("/keywords", t.handleKeywords)
		r.Get("/links", t.handleLinks)
		r.Get("/tech", t.handleTech)
		r.Get("/robots", t.handleRobots)
		r.Get("/sitemap", t.handleSitemap)
		r.Get("/serp", t.handleSerp)
		r.Post("/content-score", t.handleContentScore)

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", t.handleCreateProject)
			r.Get("/", t.handleListProjects)
			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", t.handleGetProject)
				r.Delete("/", t.handleDeleteProject)
				r.Post("/ranks", t.handleCheckRank)
				r.Get("/ranks", t.handleListRanks)
				r.Post("/backlinks", t.handleAddBacklink)
				r.Get("/backlinks", t.handleListBacklinks)
			})
		})
	})

	return r
}

// requireQuery fetches a mandatory query parameter. When absent it writes the
// canonical "<field> missing" body with HTTP 200 — the original contract
// communicates this error in the JSON body, not the status code.
func (t *Transport) requireQuery(w http.ResponseWriter, r *http.Request, field string) (string, bool) {
	v := r.URL.Query().Get(field)
	if v == "" {
		t.renderJSON(w, http.StatusOK, model.ErrorResponse{Error: field + " missing"})
		return "", false
	}
	return v, true
}

func (t *Transport) handleAudit(w http.ResponseWriter, r *http.Request) {
	target, ok := t.requireQuery(w, r, "url")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), auditTimeout)
	defer cancel()

	report, err := t.service.Audit(ctx, target)
	if err != nil {
		t.renderServiceError(w, err)
		return
	}

	// Flatten the checks to top-level keys: the report is a mapping from
	// check name to that check's own payload shape.
	resp := make(map[string]any, len(report.Checks)+2)
	resp["url"] = report.URL
	resp["final_url"] = report.FinalURL
	for name, payload := range report.Checks {
		resp[name] = payload
	}
	t.renderJSON(w, http.StatusOK, resp)
}

func (t *Transport) handleMeta(w http.ResponseWriter, r *http.Request) {
	target, ok := t.requireQuery(w, r, "url")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	meta, err := t.service.Meta(ctx, target)
	if err != nil {
		t.renderServiceError(w, err)
		return
	}
	t.renderSuccess(w, struct {
		model.SEOMetadata
		Status string `json:"status"`
	}{meta, "success"})
}

func (t *Transport) handleHeadings(w http.ResponseWriter, r *http.Request) {
	target, ok := t.requireQuery(w, r, "url")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	headings, err := t.service.Headings(ctx, target)
	if err != nil {
		t.renderServiceError(w, err)
		return
	}
	t.renderSuccess(w, struct {
		model.HeadingReport
		Status string `json:"status"`
	}{headings, "success"})
}

func (t *Transport) handleWordCount(w http.ResponseWriter, r *http.Request) {
	target, ok := t.requireQuery(w, r, "url")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	metrics, err := t.service.WordCount(ctx, target)
	if err != nil {
		t.renderServiceError(w, err)
		return
	}
	t.renderSuccess(w, struct {
		model.TextMetrics
		Status string `json:"status"`
	}{metrics, "success"})
}

func (t *Transport) handleKeywords(w http.ResponseWriter, r *http.Request) {
	target, ok := t.requireQuery(w, r, "url")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	keywords, err := t.service.Keywords(ctx, target, limit)
	if err != nil {
		t.renderServiceError(w, err)
		return
	}
	if keywords == nil {
		keywords = []model.KeywordEntry{}
	}
	t.renderSuccess(w, struct {
		Keywords []model.KeywordEntry `json:"keywords"`
		Status   string               `json:"status"`
	}{keywords, "success"})
}

func (t *Transport) handleLinks(w http.ResponseWriter, r *http.Request) {
	target, ok := t.requireQuery(w, r, "url")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), auditTimeout)
	defer cancel()

	report, err := t.service.Links(ctx, target)
	if err != nil {
		t.renderServiceError(w, err)
		return
	}
	if report.Records == nil {
		report.Records = []model.LinkRecord{}
	}
	t.renderSuccess(w, struct {
		model.LinkReport
		Status string `json:"status"`
	}{report, "success"})
}

func (t *Transport) handleTech(w http.ResponseWriter, r *http.Request) {
	target, ok := t.requireQuery(w, r, "url")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	tech, err := t.service.Tech(ctx, target)
	if err != nil {
		t.renderServiceError(w, err)
		return
	}
	t.renderSuccess(w, struct {
		model.TechReport
		Status string `json:"status"`
	}{tech, "success"})
}

func (t *Transport) handleRobots(w http.ResponseWriter, r *http.Request) {
	t.handleOriginFile(w, r, t.service.Robots)
}

func (t *Transport) handleSitemap(w http.ResponseWriter, r *http.Request) {
	t.handleOriginFile(w, r, t.service.Sitemap)
}

func (t *Transport) handleOriginFile(
	w http.ResponseWriter,
	r *http.Request,
	load func(context.Context, string) (OriginFile, error),
) {
	target, ok := t.requireQuery(w, r, "url")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	file, err := load(ctx, target)
	if err != nil {
		t.renderServiceError(w, err)
		return
	}
	t.renderSuccess(w, struct {
		OriginFile
		Status string `json:"status"`
	}{file, "success"})
}

func (t *Transport) handleSerp(w http.ResponseWriter, r *http.Request) {
	keyword, ok := t.requireQuery(w, r, "keyword")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), auditTimeout)
	defer cancel()

	entries := t.service.Serp(ctx, keyword)
	t.renderSuccess(w, struct {
		Keyword string            `json:"keyword"`
		Results []model.SerpEntry `json:"results"`
		Status  string            `json:"status"`
	}{keyword, entries, "success"})
}

type contentScoreRequest struct {
	HTML    string `json:"html"`
	Text    string `json:"text"`
	Keyword string `json:"keyword"`
}

func (t *Transport) handleContentScore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req contentScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.renderError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Keyword == "" {
		t.renderJSON(w, http.StatusOK, model.ErrorResponse{Error: "keyword missing"})
		return
	}
	if req.HTML == "" && req.Text == "" {
		t.renderJSON(w, http.StatusOK, model.ErrorResponse{Error: "text missing"})
		return
	}

	t.renderJSON(w, http.StatusOK, t.service.ScoreContent(req.HTML, req.Text, req.Keyword))
}

type createProjectRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

func (t *Transport) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.renderError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Domain == "" {
		t.renderJSON(w, http.StatusOK, model.ErrorResponse{Error: "domain missing"})
		return
	}
	if req.Name == "" {
		req.Name = req.Domain
	}

	t.renderJSON(w, http.StatusCreated, t.service.CreateProject(req.Name, req.Domain))
}

func (t *Transport) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	projects := t.service.ListProjects()
	if projects == nil {
		projects = []store.Project{}
	}
	t.renderJSON(w, http.StatusOK, projects)
}

func (t *Transport) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := t.service.GetProject(chi.URLParam(r, "projectID"))
	if err != nil {
		t.renderStoreError(w, err)
		return
	}
	t.renderJSON(w, http.StatusOK, project)
}

func (t *Transport) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := t.service.DeleteProject(chi.URLParam(r, "projectID")); err != nil {
		t.renderStoreError(w, err)
		return
	}
	t.renderJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type checkRankRequest struct {
	Keyword string `json:"keyword"`
}

func (t *Transport) handleCheckRank(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req checkRankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.renderError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Keyword == "" {
		t.renderJSON(w, http.StatusOK, model.ErrorResponse{Error: "keyword missing"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), auditTimeout)
	defer cancel()

	rec, err := t.service.CheckRank(ctx, chi.URLParam(r, "projectID"), req.Keyword)
	if err != nil {
		t.renderStoreError(w, err)
		return
	}
	t.renderJSON(w, http.StatusCreated, rec)
}

func (t *Transport) handleListRanks(w http.ResponseWriter, r *http.Request) {
	ranks, err := t.service.ListRanks(chi.URLParam(r, "projectID"))
	if err != nil {
		t.renderStoreError(w, err)
		return
	}
	if ranks == nil {
		ranks = []store.RankRecord{}
	}
	t.renderJSON(w, http.StatusOK, ranks)
}

type addBacklinkRequest struct {
	SourceURL string `json:"source_url"`
	TargetURL string `json:"target_url"`
	Anchor    string `json:"anchor"`
}

func (t *Transport) handleAddBacklink(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req addBacklinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.renderError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.SourceURL == "" {
		t.renderJSON(w, http.StatusOK, model.ErrorResponse{Error: "source_url missing"})
		return
	}

	b, err := t.service.AddBacklink(chi.URLParam(r, "projectID"), req.SourceURL, req.TargetURL, req.Anchor)
	if err != nil {
		t.renderStoreError(w, err)
		return
	}
	t.renderJSON(w, http.StatusCreated, b)
}

func (t *Transport) handleListBacklinks(w http.ResponseWriter, r *http.Request) {
	backlinks, err := t.service.ListBacklinks(chi.URLParam(r, "projectID"))
	if err != nil {
		t.renderStoreError(w, err)
		return
	}
	if backlinks == nil {
		backlinks = []store.Backlink{}
	}
	t.renderJSON(w, http.StatusOK, backlinks)
}

// renderServiceError maps application error kinds to HTTP statuses, keeping
// the missing-parameter contract (error in the body, HTTP 200).
func (t *Transport) renderServiceError(w http.ResponseWriter, err error) {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Kind {
		case errs.MissingParameter:
			status = http.StatusOK
		case errs.InvalidInput:
			status = http.StatusBadRequest
		case errs.Network, errs.UpstreamStatus:
			status = http.StatusBadGateway
		case errs.Timeout:
			status = http.StatusGatewayTimeout
		case errs.ParseFailed, errs.Unknown:
			// 500 Internal Server Error
		}
		var details string
		if appErr.Cause != nil {
			details = appErr.Cause.Error()
		}
		t.renderJSON(w, status, model.ErrorResponse{Error: appErr.Message, Details: details})
		return
	}

	t.renderJSON(w, http.StatusInternalServerError,
		model.ErrorResponse{Error: "an unexpected error occurred"})
}

func (t *Transport) renderStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		t.renderJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "project not found"})
		return
	}
	t.renderServiceError(w, err)
}

func (t *Transport) renderError(w http.ResponseWriter, status int, message string, err error) {
	resp := model.ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	t.renderJSON(w, status, resp)
}

func (t *Transport) renderSuccess(w http.ResponseWriter, data any) {
	t.renderJSON(w, http.StatusOK, data)
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
