package web

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogersnm/kanban/internal/board"
	"github.com/rogersnm/kanban/internal/model"
)

func newTestServer(t *testing.T) (*Server, *board.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	b := board.New()
	b.Hydrate([]model.Task{
		{ID: "p1", Description: "Buy milk", Bucket: "public", Order: 1000, State: model.StateTodo},
		{ID: "p2", Description: "Walk dog", Bucket: "public", Order: 2000, State: model.StateDone},
		{ID: "s1", Description: "Hello World", Bucket: "secret", Order: 1000, State: model.StateProg},
	}, []model.Bucket{{Name: "public"}, {Name: "secret", Token: "tok123"}})
	return NewServer(b, nil), b
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestListBuckets_HidesTokens(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/buckets", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "tok123")
	got := decode[[]bucketJSON](t, w)
	assert.Equal(t, []bucketJSON{{Name: "public"}, {Name: "secret", Protected: true}}, got)
}

func TestBucket_Public(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/buckets/public", nil)

	require.Equal(t, http.StatusOK, w.Code)
	v := decode[bucketViewJSON](t, w)
	assert.True(t, v.Authenticated)
	require.Len(t, v.Active, 1)
	assert.Equal(t, "Buy milk", v.Active[0].Description)
	require.Len(t, v.Done, 1)
	assert.Equal(t, progressJSON{Total: 2, Done: 1, Percent: 50}, v.Progress)
}

func TestBucket_ProtectedWithoutToken(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/buckets/secret", nil)

	require.Equal(t, http.StatusOK, w.Code)
	v := decode[bucketViewJSON](t, w)
	assert.False(t, v.Authenticated)
	assert.Equal(t, "H***o W***d", v.Active[0].Description)
	assert.NotContains(t, w.Body.String(), "Hello")
}

func TestBucket_ProtectedWithToken(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/buckets/secret?token=tok123", nil)

	v := decode[bucketViewJSON](t, w)
	assert.True(t, v.Authenticated)
	assert.Equal(t, "Hello World", v.Active[0].Description)
}

func TestBucket_Unknown(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/buckets/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBucket_Private(t *testing.T) {
	s, b := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/buckets", createBucketRequest{Name: "vault", Private: true})

	require.Equal(t, http.StatusCreated, w.Code)
	got := decode[map[string]string](t, w)
	assert.Len(t, got["token"], 20)
	assert.Equal(t, "/bucket/vault?token="+got["token"], got["address"])

	cfg, ok := b.GetBucketConfig("vault")
	require.True(t, ok)
	assert.Equal(t, got["token"], cfg.Token)
}

func TestCreateBucket_MissingName(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/buckets", createBucketRequest{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bucket name is required")
}

func TestAddTask_Commit(t *testing.T) {
	s, b := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/buckets/public/tasks", addTaskRequest{Description: "Water plants"})

	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[model.Task](t, w)
	assert.Equal(t, "Water plants", created.Description)
	assert.Equal(t, 3000.0, created.Order)

	got, ok := b.Task(created.ID)
	require.True(t, ok)
	assert.False(t, got.Pending)
	_, pending := b.Pending()
	assert.False(t, pending)
}

func TestAddTask_PendingConflict(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/buckets/public/tasks", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode[model.Task](t, w).Editing)

	w = do(t, s, http.MethodPost, "/api/buckets/public/tasks", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAddTask_RequiresToken(t *testing.T) {
	s, b := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/buckets/secret/tasks", addTaskRequest{Description: "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, b.State().Tasks, 3)

	w = do(t, s, http.MethodPost, "/api/buckets/secret/tasks?token=tok123", addTaskRequest{Description: "x"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAddTaskAfter(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/tasks/p1/after", addTaskRequest{Description: "Buy eggs"})

	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[model.Task](t, w)
	assert.Equal(t, 1500.0, created.Order)
	assert.Equal(t, "public", created.Bucket)
}

func TestUpdateTask(t *testing.T) {
	s, b := newTestServer(t)
	w := do(t, s, http.MethodPatch, "/api/tasks/p1", map[string]any{
		"description": "Buy oat milk",
		"state":       "prog",
		"parent_id":   "p2",
	})

	require.Equal(t, http.StatusOK, w.Code)
	got, _ := b.Task("p1")
	assert.Equal(t, "Buy oat milk", got.Description)
	assert.Equal(t, model.StateProg, got.State)
	assert.Equal(t, "p2", got.Parent())

	w = do(t, s, http.MethodPatch, "/api/tasks/p1", map[string]any{"parent_id": nil})
	require.Equal(t, http.StatusOK, w.Code)
	got, _ = b.Task("p1")
	assert.Nil(t, got.ParentID)
}

func TestUpdateTask_EmptyDescriptionDeletes(t *testing.T) {
	s, b := newTestServer(t)
	w := do(t, s, http.MethodPatch, "/api/tasks/p1", map[string]any{"description": ""})

	assert.Equal(t, http.StatusNoContent, w.Code)
	_, ok := b.Task("p1")
	assert.False(t, ok)
}

func TestUpdateTask_BadState(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodPatch, "/api/tasks/p1", map[string]any{"state": "later"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTask_LargeOrders(t *testing.T) {
	s, b := newTestServer(t)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPatch, "/api/tasks/p1", map[string]any{"order": 1e16}).Code)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPatch, "/api/tasks/p2", map[string]any{"order": 1e16}).Code)

	p1, _ := b.Task("p1")
	p2, _ := b.Task("p2")
	assert.Equal(t, 1e16, p1.Order)
	assert.Greater(t, p2.Order, p1.Order)
}

func TestPatchRequest_RejectsNonFiniteOrder(t *testing.T) {
	for _, o := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := patchRequest{Order: &o}.toPatch()
		assert.Error(t, err, "order %v", o)
	}
	ok := 1500.0
	p, err := patchRequest{Order: &ok}.toPatch()
	require.NoError(t, err)
	assert.Equal(t, 1500.0, *p.Order)
}

func TestUpdateTask_MoveIntoProtectedNeedsToken(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodPatch, "/api/tasks/p1", map[string]any{"bucket": "secret"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTask_NotFound(t *testing.T) {
	s, _ := newTestServer(t)
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w := do(t, s, method, "/api/tasks/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
	}
}

func TestGetTask_ProtectedNeedsToken(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodGet, "/api/tasks/s1", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/tasks/s1?token=tok123", nil).Code)
}

func TestDeleteTask(t *testing.T) {
	s, b := newTestServer(t)
	w := do(t, s, http.MethodDelete, "/api/tasks/p2", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	_, ok := b.Task("p2")
	assert.False(t, ok)
}

func TestMoveTask(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/tasks/p2/move", moveRequest{After: "s1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, s, http.MethodPost, "/api/tasks/p2/move?token=tok123", moveRequest{After: "s1"})
	require.Equal(t, http.StatusOK, w.Code)
	moved := decode[model.Task](t, w)
	assert.Equal(t, "secret", moved.Bucket)
	assert.Equal(t, 2000.0, moved.Order)
}

func TestEditing(t *testing.T) {
	s, b := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/tasks/p1/editing", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	got, ok := b.Editing()
	require.True(t, ok)
	assert.Equal(t, "p1", got.ID)
}

func TestSearch(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/search?q=hello", nil)
	assert.Equal(t, "[]", w.Body.String())

	w = do(t, s, http.MethodGet, "/api/search?q=hello&token=tok123", nil)
	got := decode[[]map[string]any](t, w)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0]["id"])
}

func TestState(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/state", nil)
	got := decode[map[string]any](t, w)
	assert.Equal(t, float64(3), got["tasks"])
	assert.Equal(t, "", got["error"])
}

func TestState_PendingAndEditing(t *testing.T) {
	s, b := newTestServer(t)
	pending, ok := b.AddTempTask("public")
	require.True(t, ok)

	got := decode[map[string]any](t, do(t, s, http.MethodGet, "/api/state", nil))
	assert.Equal(t, pending.ID, got["pending"])
	assert.Equal(t, pending.ID, got["editing"])

	b.DeleteTask(pending.ID)
	got = decode[map[string]any](t, do(t, s, http.MethodGet, "/api/state", nil))
	assert.Nil(t, got["pending"])
	assert.Nil(t, got["editing"])
}

func TestClearError(t *testing.T) {
	s, b := newTestServer(t)
	b.SetError("disk full")

	w := do(t, s, http.MethodDelete, "/api/state/error", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "", b.State().Error)
}
