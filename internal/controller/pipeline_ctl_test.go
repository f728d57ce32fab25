package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebay_sync_v1_202608/internal/service"
)

func setupPipelineRouter() (*gin.Engine, *service.PipelineTracker) {
	gin.SetMode(gin.TestMode)
	tracker := service.NewPipelineTracker()
	ctl := NewPipelineController(tracker)

	r := gin.New()
	r.POST("/api/pipeline/jobs", ctl.CreateJob)
	r.GET("/api/pipeline/jobs", ctl.ListJobs)
	r.GET("/api/pipeline/jobs/:id", ctl.GetJob)
	r.POST("/api/pipeline/jobs/:id/start", ctl.StartJob)
	r.PUT("/api/pipeline/jobs/:id/steps", ctl.UpdateStep)
	return r, tracker
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateJobEndpoint(t *testing.T) {
	r, tracker := setupPipelineRouter()

	w := doJSON(r, http.MethodPost, "/api/pipeline/jobs", gin.H{"product_id": "p1"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			JobID string `json:"job_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.JobID)

	job, err := tracker.GetJob(resp.Data.JobID)
	require.NoError(t, err)
	assert.Equal(t, "p1", job.ProductID)
	assert.Len(t, job.Steps, 4)
}

func TestCreateJobEndpoint_MissingProductID(t *testing.T) {
	r, _ := setupPipelineRouter()

	w := doJSON(r, http.MethodPost, "/api/pipeline/jobs", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJobEndpoint_NotFound(t *testing.T) {
	r, _ := setupPipelineRouter()

	w := doJSON(r, http.MethodGet, "/api/pipeline/jobs/no-such-job", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStepEndpoint(t *testing.T) {
	r, tracker := setupPipelineRouter()
	jobID := tracker.CreateJob("p1")

	w := doJSON(r, http.MethodPut, "/api/pipeline/jobs/"+jobID+"/steps", gin.H{
		"step_name": "fetch_product",
		"status":    "done",
		"result":    gin.H{"title": "Canon 5D"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	job, err := tracker.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, service.StepDone, job.Steps[0].Status)
	assert.Equal(t, service.JobProcessing, job.Status)
}

func TestUpdateStepEndpoint_InvalidStepName(t *testing.T) {
	r, tracker := setupPipelineRouter()
	jobID := tracker.CreateJob("p1")

	w := doJSON(r, http.MethodPut, "/api/pipeline/jobs/"+jobID+"/steps", gin.H{
		"step_name": "upload_to_ftp",
		"status":    "done",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListJobsEndpoint(t *testing.T) {
	r, tracker := setupPipelineRouter()
	tracker.CreateJob("p1")
	id2 := tracker.CreateJob("p2")

	w := doJSON(r, http.MethodGet, "/api/pipeline/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Total int `json:"total"`
			Jobs  []struct {
				ID string `json:"id"`
			} `json:"jobs"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Total)
	// 最新创建的在前
	assert.Equal(t, id2, resp.Data.Jobs[0].ID)
}

func TestStartJobEndpoint(t *testing.T) {
	r, tracker := setupPipelineRouter()
	jobID := tracker.CreateJob("p1")

	w := doJSON(r, http.MethodPost, "/api/pipeline/jobs/"+jobID+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code)

	job, _ := tracker.GetJob(jobID)
	assert.Equal(t, service.JobProcessing, job.Status)
}
