package httpadapter

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amoghv/rollscan/internal/core/domain"
	"github.com/amoghv/rollscan/internal/core/ports"
)

type submitterFake struct {
	id       string
	err      error
	received []string
}

func (f *submitterFake) Submit(_ context.Context, uploads []ports.Upload) (string, error) {
	for _, up := range uploads {
		_, _ = io.Copy(io.Discard, up.Body)
		f.received = append(f.received, up.Filename)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

type registryFake struct {
	jobs map[string]domain.Job
}

func (f *registryFake) Create([]string) string { return "" }

func (f *registryFake) Update(string, domain.JobStatus, string, float64) {}

func (f *registryFake) Get(id string) (domain.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrJobNotFound
	}
	return job, nil
}

type repoFake struct {
	rolls     []domain.Roll
	sections  []domain.Section
	analytics domain.Analytics
	dumps     []domain.TableDump
	deleted   []string
	deleteErr error
	listErr   error
}

func (f *repoFake) EnsureSchema(context.Context) error { return nil }

func (f *repoFake) InsertRoll(context.Context, domain.RollCommit) (int64, error) { return 0, nil }

func (f *repoFake) DeleteRoll(_ context.Context, idOrName string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, idOrName)
	return nil
}

func (f *repoFake) ListRolls(context.Context) ([]domain.Roll, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rolls, nil
}

func (f *repoFake) ListSections(context.Context, int64) ([]domain.Section, error) {
	return f.sections, nil
}

func (f *repoFake) RollAnalytics(context.Context, int64) (domain.Analytics, error) {
	return f.analytics, nil
}

func (f *repoFake) SectionAnalytics(context.Context, int64) (domain.Analytics, error) {
	return f.analytics, nil
}

func (f *repoFake) DumpTables(context.Context) ([]domain.TableDump, error) { return f.dumps, nil }

func newTestRouter(submitter *submitterFake, registry *registryFake, repo *repoFake) http.Handler {
	if submitter == nil {
		submitter = &submitterFake{id: "job-1"}
	}
	if registry == nil {
		registry = &registryFake{jobs: map[string]domain.Job{}}
	}
	if repo == nil {
		repo = &repoFake{}
	}
	return NewRouter(submitter, registry, repo).Handler()
}

func multipartBody(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, name := range names {
		part, err := writer.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.7")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestSubmitJobAccepted(t *testing.T) {
	submitter := &submitterFake{id: "job-42"}
	handler := newTestRouter(submitter, nil, nil)

	body, contentType := multipartBody(t, "part-001.pdf", "part-002.pdf")
	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["job_id"] != "job-42" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(submitter.received) != 2 || submitter.received[0] != "part-001.pdf" {
		t.Fatalf("submitter received %v", submitter.received)
	}
}

func TestSubmitJobMissingMultipartField(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestSubmitJobInvalidBatchMapsToBadRequest(t *testing.T) {
	submitter := &submitterFake{err: domain.WrapError(domain.ErrInvalidInput, "submit", errors.New("no readable PDF"))}
	handler := newTestRouter(submitter, nil, nil)

	body, contentType := multipartBody(t, "notes.txt")
	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestJobStatusFound(t *testing.T) {
	registry := &registryFake{jobs: map[string]domain.Job{
		"job-7": {ID: "job-7", Status: domain.JobRunning, Message: "file 1/2", Progress: 0.4},
	}}
	handler := newTestRouter(nil, registry, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/job-7", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var job domain.Job
	if err := json.NewDecoder(res.Body).Decode(&job); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if job.Status != domain.JobRunning || job.Progress != 0.4 {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestJobStatusUnknownIDIs404(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/nope", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestListRolls(t *testing.T) {
	repo := &repoFake{rolls: []domain.Roll{
		{ID: 1, FileName: "part-001.pdf", ProcessedAt: time.Now().UTC()},
	}}
	handler := newTestRouter(nil, nil, repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/rolls", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var resp struct {
		Rolls []domain.Roll `json:"rolls"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Rolls) != 1 || resp.Rolls[0].FileName != "part-001.pdf" {
		t.Fatalf("unexpected rolls: %+v", resp.Rolls)
	}
}

func TestDeleteRollByName(t *testing.T) {
	repo := &repoFake{}
	handler := newTestRouter(nil, nil, repo)

	req := httptest.NewRequest(http.MethodDelete, "/v1/rolls/part-001.pdf", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "part-001.pdf" {
		t.Fatalf("deleted = %v", repo.deleted)
	}
}

func TestDeleteRollMissingIs404(t *testing.T) {
	repo := &repoFake{deleteErr: domain.WrapError(domain.ErrRollNotFound, "delete", errors.New("no such roll"))}
	handler := newTestRouter(nil, nil, repo)

	req := httptest.NewRequest(http.MethodDelete, "/v1/rolls/99", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestListSections(t *testing.T) {
	repo := &repoFake{sections: []domain.Section{{ID: 3, RollID: 1, Name: "વિસ્તાર એક"}}}
	handler := newTestRouter(nil, nil, repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/rolls/1/sections", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var resp struct {
		Sections []domain.Section `json:"sections"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Sections) != 1 || resp.Sections[0].Name != "વિસ્તાર એક" {
		t.Fatalf("unexpected sections: %+v", resp.Sections)
	}
}

func TestRollAnalytics(t *testing.T) {
	repo := &repoFake{analytics: domain.Analytics{
		Gender:    []domain.CategoryCount{{Label: "પુરુષ", Count: 410}},
		AgeGroups: []domain.CategoryCount{{Label: "30-39", Count: 120}},
	}}
	handler := newTestRouter(nil, nil, repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/analytics/rolls/1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var stats domain.Analytics
	if err := json.NewDecoder(res.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(stats.Gender) != 1 || stats.Gender[0].Count != 410 {
		t.Fatalf("unexpected analytics: %+v", stats)
	}
}

func TestAnalyticsNonNumericIDIs400(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/analytics/sections/abc", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestExportCSVStreamsZip(t *testing.T) {
	repo := &repoFake{dumps: []domain.TableDump{
		{Name: "rolls", Columns: []string{"id"}, Rows: [][]string{{"1"}}},
	}}
	handler := newTestRouter(nil, nil, repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/export?format=csv", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Type"); got != "application/zip" {
		t.Fatalf("Content-Type = %q", got)
	}
	raw := res.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("response is not a zip: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "rolls.csv" {
		t.Fatalf("zip entries = %v", zr.File)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/export?format=pdf", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/v1/rolls", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}
