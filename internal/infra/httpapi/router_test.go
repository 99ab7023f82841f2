package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"question_cycle_service/internal/app"
	"question_cycle_service/internal/domain/question"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	assignments map[string]app.Assignment
	resolveErr  error
	created     []*question.Question
	createErr   error
	all         []*question.Question
	listErr     error
	info        app.CycleInfo
}

func (s *stubService) Resolve(_ context.Context, region string) (app.Assignment, error) {
	if s.resolveErr != nil {
		return app.Assignment{}, s.resolveErr
	}
	if a, ok := s.assignments[region]; ok {
		return a, nil
	}
	return app.Assignment{Region: region, Cycle: 3}, nil
}

func (s *stubService) CreateQuestion(_ context.Context, region, text string, assignedCycle int) (*question.Question, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	q := &question.Question{ID: fmt.Sprintf("q-%d", len(s.created)+1), Region: region, Text: text, AssignedCycle: assignedCycle}
	s.created = append(s.created, q)
	return q, nil
}

func (s *stubService) ListQuestions(context.Context) ([]*question.Question, error) {
	return s.all, s.listErr
}

func (s *stubService) CycleInfo() app.CycleInfo {
	return s.info
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(svc *stubService, metrics http.Handler) *gin.Engine {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewRouter(svc, logrus.NewEntry(l), metrics)
}

func do(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetAssignedQuestion(t *testing.T) {
	apac := &question.Question{ID: "q-1", Region: "APAC", AssignedCycle: 2, Text: "What did you learn?"}
	svc := &stubService{assignments: map[string]app.Assignment{
		"APAC": {Region: "APAC", Cycle: 2, Question: apac},
	}}
	r := newTestRouter(svc, nil)

	t.Run("found", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/questions?region=APAC", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got question.Question
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "q-1", got.ID)
		assert.Equal(t, 2, got.AssignedCycle)
		assert.Contains(t, w.Body.String(), `"assignedCycle":2`)
	})

	t.Run("not found returns message", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/questions?region=EU", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "No question found for the current cycle: 3", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("missing region", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/questions", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetAssignedQuestion_StoreError(t *testing.T) {
	r := newTestRouter(&stubService{resolveErr: errors.New("db down")}, nil)

	w := do(r, http.MethodGet, "/api/questions?region=APAC", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "No question found")
}

func TestCreateQuestion(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc, nil)

	t.Run("created", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/questions", map[string]any{"region": "APAC", "text": "Hello?", "assignedCycle": 4})
		require.Equal(t, http.StatusCreated, w.Code)
		var got question.Question
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "APAC", got.Region)
		assert.Equal(t, 4, got.AssignedCycle)
		assert.Len(t, svc.created, 1)
	})

	invalid := []map[string]any{
		{"text": "Hello?", "assignedCycle": 1},
		{"region": "APAC", "assignedCycle": 1},
		{"region": "APAC", "text": "Hello?"},
		{"region": "APAC", "text": "Hello?", "assignedCycle": 0},
		{"region": "APAC", "text": "Hello?", "assignedCycle": "two"},
	}
	for i, body := range invalid {
		t.Run(fmt.Sprintf("invalid body %d", i), func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/questions", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Len(t, svc.created, 1)
}

func TestCreateQuestion_ServiceErrors(t *testing.T) {
	body := map[string]any{"region": " ", "text": "Hello?", "assignedCycle": 1}

	w := do(newTestRouter(&stubService{createErr: fmt.Errorf("%w: region must not be empty", question.ErrInvalid)}, nil), http.MethodPost, "/api/questions", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(newTestRouter(&stubService{createErr: errors.New("insert failed")}, nil), http.MethodPost, "/api/questions", body)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListQuestions(t *testing.T) {
	svc := &stubService{all: []*question.Question{{ID: "a"}, {ID: "b"}}}
	w := do(newTestRouter(svc, nil), http.MethodGet, "/api/questions/all", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []question.Question
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)

	w = do(newTestRouter(&stubService{listErr: errors.New("boom")}, nil), http.MethodGet, "/api/questions/all", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCurrentCycle(t *testing.T) {
	loc := time.FixedZone("SGT", 8*3600)
	svc := &stubService{info: app.CycleInfo{
		Cycle:     5,
		StartedAt: time.Date(2024, 1, 29, 0, 0, 0, 0, loc),
		NextStart: time.Date(2024, 2, 5, 0, 0, 0, 0, loc),
		Timezone:  "Asia/Singapore",
	}}
	w := do(newTestRouter(svc, nil), http.MethodGet, "/api/cycle", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got cycleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, cycleResponse{
		Cycle:     5,
		StartedAt: "2024-01-29T00:00:00+08:00",
		NextStart: "2024-02-05T00:00:00+08:00",
		Timezone:  "Asia/Singapore",
	}, got)
}

func TestHealthAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("question_cycle_cache_lookups_total 1\n"))
	})
	r := newTestRouter(&stubService{}, metrics)

	w := do(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "question_cycle_cache_lookups_total")

	w = do(newTestRouter(&stubService{}, nil), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
