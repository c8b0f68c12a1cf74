package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/videoaudit/audit-agent/internal/analysis"
)

func seedTimelineArtifact(t *testing.T, repo analysis.Repository, id string, timeline []analysis.EditingStep) {
	t.Helper()

	artifact := &analysis.Artifact{
		VideoID:         id,
		RawAnalysis:     "[]",
		Recommendations: []analysis.Recommendation{},
		EditingTimeline: timeline,
		CreatedAt:       time.Now().UTC(),
	}
	if err := repo.PutArtifact(context.Background(), artifact); err != nil {
		t.Fatalf("failed to seed artifact: %v", err)
	}
}

func TestMarkersEndpoint(t *testing.T) {
	router, repo := testRouter(t, &fakeClient{})

	seedTimelineArtifact(t, repo, "vid-1", []analysis.EditingStep{
		{Timestamp: "00:02", TimestampSeconds: 2, ActionType: analysis.ActionCut, TechnicalAction: "Trim the intro", Reason: "Dead air"},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/analyses/vid-1/markers", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("unexpected content disposition: %s", cd)
	}

	body := rr.Body.String()
	if !strings.Contains(body, "TITLE: vid-1") {
		t.Errorf("missing title in:\n%s", body)
	}
	if !strings.Contains(body, "CUT") || !strings.Contains(body, "00:00:02:00") {
		t.Errorf("missing marker entry in:\n%s", body)
	}
}

func TestMarkersEndpointFrameRate(t *testing.T) {
	router, repo := testRouter(t, &fakeClient{})

	seedTimelineArtifact(t, repo, "vid-1", []analysis.EditingStep{
		{Timestamp: "00:01", TimestampSeconds: 1.5, ActionType: analysis.ActionZoom, TechnicalAction: "a", Reason: "b"},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/analyses/vid-1/markers?frame_rate=25", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "00:00:01:13") {
		t.Errorf("expected 25fps timecode in:\n%s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/analyses/vid-1/markers?frame_rate=bogus", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMarkersEndpointNotFound(t *testing.T) {
	router, _ := testRouter(t, &fakeClient{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/analyses/missing/markers", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestMarkersEndpointNoTimeline(t *testing.T) {
	router, repo := testRouter(t, &fakeClient{})

	seedTimelineArtifact(t, repo, "vid-1", []analysis.EditingStep{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/analyses/vid-1/markers", nil))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
}

func TestExportHistoryEndpoint(t *testing.T) {
	router, repo := testRouter(t, &fakeClient{})

	seedTimelineArtifact(t, repo, "vid-1", []analysis.EditingStep{})
	seedTimelineArtifact(t, repo, "vid-2", []analysis.EditingStep{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/analyses/export", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected content type: %s", ct)
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a valid workbook: %v", err)
	}
	defer workbook.Close()

	rows, err := workbook.GetRows("History")
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected header plus 2 rows, got %d", len(rows))
	}
}

func TestExportHistoryEndpointBadLimit(t *testing.T) {
	router, _ := testRouter(t, &fakeClient{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/analyses/export?limit=-2", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
