package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rogersnm/kanban/internal/board"
	"github.com/rogersnm/kanban/internal/id"
	"github.com/rogersnm/kanban/internal/model"
	"github.com/rogersnm/kanban/internal/ordering"
	"github.com/rogersnm/kanban/internal/route"
	"github.com/rogersnm/kanban/internal/view"
)

const maxDescriptionSize = 64 << 10 // 64KB

type bucketJSON struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
}

type progressJSON struct {
	Total      int `json:"total"`
	Done       int `json:"done"`
	InProgress int `json:"in_progress"`
	Percent    int `json:"percent"`
}

type bucketViewJSON struct {
	Name          string       `json:"name"`
	Protected     bool         `json:"protected"`
	Authenticated bool         `json:"authenticated"`
	Placeholder   bool         `json:"placeholder"`
	Active        []model.Task `json:"active"`
	Done          []model.Task `json:"done"`
	Progress      progressJSON `json:"progress"`
}

type createBucketRequest struct {
	Name    string `json:"name"`
	Private bool   `json:"private"`
}

type addTaskRequest struct {
	Description string `json:"description"`
}

type moveRequest struct {
	Bucket string `json:"bucket"`
	After  string `json:"after"`
}

// patchRequest mirrors board.Patch. parent_id is kept raw so an explicit
// null can clear the parent while an absent key leaves it alone.
type patchRequest struct {
	Description *string         `json:"description"`
	Bucket      *string         `json:"bucket"`
	ParentID    json.RawMessage `json:"parent_id"`
	Tags        *[]string       `json:"tags"`
	Order       *float64        `json:"order"`
	Editing     *bool           `json:"editing"`
	State       *model.State    `json:"state"`
}

func (r patchRequest) toPatch() (board.Patch, error) {
	p := board.Patch{
		Description: r.Description,
		Bucket:      r.Bucket,
		Tags:        r.Tags,
		Order:       r.Order,
		Editing:     r.Editing,
		State:       r.State,
	}
	if r.ParentID != nil {
		var parent *string
		if err := json.Unmarshal(r.ParentID, &parent); err != nil {
			return board.Patch{}, err
		}
		p.ParentID = &parent
	}
	if r.State != nil {
		if err := model.ValidateState(*r.State); err != nil {
			return board.Patch{}, err
		}
	}
	if r.Order != nil && !ordering.Valid(*r.Order) {
		return board.Patch{}, fmt.Errorf("invalid order %v", *r.Order)
	}
	return p, nil
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func progressOf(p view.Progress) progressJSON {
	return progressJSON{Total: p.Total, Done: p.Done, InProgress: p.InProgress, Percent: p.Percent()}
}

// authorize reports whether the request's token opens bucket. Buckets
// without a config are open.
func (s *Server) authorize(c *gin.Context, bucket string) bool {
	b, ok := s.board.GetBucketConfig(bucket)
	if ok && !b.Authenticates(c.Query("token")) {
		abort(c, http.StatusForbidden, "invalid token for bucket "+bucket)
		return false
	}
	return true
}

// taskFor looks up the task named by :id and checks access to its bucket.
func (s *Server) taskFor(c *gin.Context) (model.Task, bool) {
	t, ok := s.board.Task(c.Param("id"))
	if !ok {
		abort(c, http.StatusNotFound, "task not found")
		return model.Task{}, false
	}
	if !s.authorize(c, t.Bucket) {
		return model.Task{}, false
	}
	return t, true
}

func (s *Server) handleState(c *gin.Context) {
	st := s.board.State()
	out := gin.H{
		"loading":  st.Loading,
		"error":    st.Error,
		"revision": st.Revision,
		"tasks":    len(st.Tasks),
		"buckets":  len(st.Buckets),
		"pending":  nil,
		"editing":  nil,
	}
	if t, ok := s.board.Pending(); ok {
		out["pending"] = t.ID
	}
	if t, ok := s.board.Editing(); ok {
		out["editing"] = t.ID
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleClearError(c *gin.Context) {
	s.board.ClearError()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListBuckets(c *gin.Context) {
	buckets := s.board.State().Buckets
	out := make([]bucketJSON, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, bucketJSON{Name: b.Name, Protected: b.Protected()})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateBucket(c *gin.Context) {
	var req createBucketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		abort(c, http.StatusBadRequest, "bucket name is required")
		return
	}
	token := ""
	if req.Private {
		tok, err := id.NewToken()
		if err != nil {
			abort(c, http.StatusInternalServerError, err.Error())
			return
		}
		token = tok
	}
	b, token := s.board.CreateBucket(req.Name, token)
	c.JSON(http.StatusCreated, gin.H{
		"name":    b.Name,
		"token":   token,
		"address": route.Format(b.Name, token),
	})
}

func (s *Server) handleBucket(c *gin.Context) {
	name := c.Param("name")
	v := view.Bucket(s.board.State(), name, c.Query("token"))
	if !v.Known && len(v.Tasks()) == 0 {
		abort(c, http.StatusNotFound, "bucket not found")
		return
	}
	c.JSON(http.StatusOK, bucketViewJSON{
		Name:          name,
		Protected:     v.Bucket.Protected(),
		Authenticated: v.Authenticated,
		Placeholder:   v.Placeholder,
		Active:        nonNil(v.Active),
		Done:          nonNil(v.Done),
		Progress:      progressOf(v.Progress),
	})
}

func (s *Server) handleSearch(c *gin.Context) {
	token := c.Query("token")
	results := view.Search(s.board.State(), c.Query("q"), func(b model.Bucket) bool {
		return b.Authenticates(token)
	})
	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		out = append(out, gin.H{"id": r.TaskID, "bucket": r.Bucket, "state": r.State, "snippet": r.Snippet})
	}
	c.JSON(http.StatusOK, out)
}

// handleAddTask opens the pending task in a bucket. With a description in
// the body the task is committed straight away.
func (s *Server) handleAddTask(c *gin.Context) {
	bucket := c.Param("name")
	if !s.authorize(c, bucket) {
		return
	}
	var req addTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	if len(req.Description) > maxDescriptionSize {
		abort(c, http.StatusBadRequest, "description exceeds maximum size of 64KB")
		return
	}
	created, ok := s.board.AddTempTask(bucket)
	if !ok {
		abort(c, http.StatusConflict, "another task is already being added")
		return
	}
	s.respondCreated(c, created, req.Description)
}

func (s *Server) handleAddTaskAfter(c *gin.Context) {
	after, ok := s.taskFor(c)
	if !ok {
		return
	}
	var req addTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	created, ok := s.board.AddTaskAfter(after.ID, after.Bucket)
	if !ok {
		abort(c, http.StatusNotFound, "task not found")
		return
	}
	s.respondCreated(c, created, req.Description)
}

func (s *Server) respondCreated(c *gin.Context, created model.Task, desc string) {
	if strings.TrimSpace(desc) != "" {
		editing := false
		s.board.UpdateTask(created.ID, board.Patch{Description: &desc, Editing: &editing})
		if t, ok := s.board.Task(created.ID); ok {
			created = t
		}
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetTask(c *gin.Context) {
	t, ok := s.taskFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t)
}

// handleUpdateTask applies a partial update. Saving empty content deletes
// the task, which is answered with 204.
func (s *Server) handleUpdateTask(c *gin.Context) {
	t, ok := s.taskFor(c)
	if !ok {
		return
	}
	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Bucket != nil && *patch.Bucket != t.Bucket && !s.authorize(c, *patch.Bucket) {
		return
	}

	s.board.UpdateTask(t.ID, patch)
	updated, ok := s.board.Task(t.ID)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	t, ok := s.taskFor(c)
	if !ok {
		return
	}
	s.board.DeleteTask(t.ID)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleMoveTask(c *gin.Context) {
	t, ok := s.taskFor(c)
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	target := req.Bucket
	if req.After != "" {
		after, ok := s.board.Task(req.After)
		if !ok {
			abort(c, http.StatusNotFound, "task not found")
			return
		}
		target = after.Bucket
	}
	if target != "" && target != t.Bucket && !s.authorize(c, target) {
		return
	}
	s.board.MoveTask(t.ID, req.Bucket, req.After)
	moved, _ := s.board.Task(t.ID)
	c.JSON(http.StatusOK, moved)
}

func (s *Server) handleEditing(c *gin.Context) {
	t, ok := s.taskFor(c)
	if !ok {
		return
	}
	s.board.EditingTask(t.ID)
	c.Status(http.StatusNoContent)
}

func nonNil(tasks []model.Task) []model.Task {
	if tasks == nil {
		return []model.Task{}
	}
	return tasks
}
