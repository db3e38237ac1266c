package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amoghv/rollscan/internal/core/domain"
	"github.com/amoghv/rollscan/internal/core/ports"
	"github.com/amoghv/rollscan/internal/export"
)

const maxUploadMemory = 64 << 20

type Router struct {
	submitter ports.JobSubmitter
	registry  ports.JobRegistry
	repo      ports.RollRepository
}

func NewRouter(
	submitter ports.JobSubmitter,
	registry ports.JobRegistry,
	repo ports.RollRepository,
) *Router {
	return &Router{
		submitter: submitter,
		registry:  registry,
		repo:      repo,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/jobs", rt.submitJob)
	mux.HandleFunc("/v1/jobs/", rt.jobStatus)
	mux.HandleFunc("/v1/rolls", rt.listRolls)
	mux.HandleFunc("/v1/rolls/", rt.rollSubtree)
	mux.HandleFunc("/v1/analytics/rolls/", rt.rollAnalytics)
	mux.HandleFunc("/v1/analytics/sections/", rt.sectionAnalytics)
	mux.HandleFunc("/v1/export", rt.exportTables)
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) submitJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}

	uploads := make([]ports.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable upload " + fh.Filename})
			return
		}
		defer f.Close()
		uploads = append(uploads, ports.Upload{Filename: fh.Filename, Body: f})
	}

	id, err := rt.submitter.Submit(r.Context(), uploads)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": id})
}

func (rt *Router) jobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "job id is required"})
		return
	}

	job, err := rt.registry.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (rt *Router) listRolls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rolls, err := rt.repo.ListRolls(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rolls": rolls})
}

// rollSubtree serves DELETE /v1/rolls/{idOrName} and GET /v1/rolls/{id}/sections.
func (rt *Router) rollSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/rolls/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "roll id is required"})
		return
	}

	if key, ok := strings.CutSuffix(rest, "/sections"); ok {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		rollID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "roll id must be numeric"})
			return
		}
		sections, err := rt.repo.ListSections(r.Context(), rollID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sections": sections})
		return
	}

	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := rt.repo.DeleteRoll(r.Context(), rest); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": rest})
}

func (rt *Router) rollAnalytics(w http.ResponseWriter, r *http.Request) {
	rt.analytics(w, r, "/v1/analytics/rolls/", rt.repo.RollAnalytics)
}

func (rt *Router) sectionAnalytics(w http.ResponseWriter, r *http.Request) {
	rt.analytics(w, r, "/v1/analytics/sections/", rt.repo.SectionAnalytics)
}

func (rt *Router) analytics(w http.ResponseWriter, r *http.Request, prefix string, fetch analyticsFetch) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, prefix), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be numeric"})
		return
	}

	stats, err := fetch(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) exportTables(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be xlsx or csv"})
		return
	}

	dumps, err := rt.repo.DumpTables(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	if format == "csv" {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="rollscan-`+stamp+`.zip"`)
		if err := export.WriteCSVArchive(w, dumps); err != nil {
			slogExportError(r, err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="rollscan-`+stamp+`.xlsx"`)
	if err := export.WriteWorkbook(w, dumps); err != nil {
		slogExportError(r, err)
	}
}

type analyticsFetch func(ctx context.Context, id int64) (domain.Analytics, error)

// body may be half-sent by the time streaming fails, so log instead of
// rewriting the status
func slogExportError(r *http.Request, err error) {
	slog.Error("export_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
