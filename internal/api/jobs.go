package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// handleUpdateExpired recomputes the expired flag across all announcements.
// The default mode runs inline and returns the resulting counts; async=true
// starts a background job and returns 202 with a poll URL.
func (s *Server) handleUpdateExpired(c echo.Context) error {
	if boolParam(c, "async", false) {
		return s.startExpiredJob(c)
	}

	counts, err := s.Store.UpdateExpired(c.Request().Context())
	if err != nil {
		s.log.Error().Err(err).Msg("expired recompute failed")
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to update expired status",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Expired status updated successfully",
		"counts":  counts,
	})
}

func (s *Server) startExpiredJob(c echo.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]any{
			"error":  "An update-expired job is already running",
			"job_id": job.ID,
		})
	}

	// context.WithoutCancel detaches from the HTTP lifecycle; the timeout
	// bounds runaway jobs.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 30*time.Minute,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	go func() {
		defer jobCancel()

		counts, err := s.Store.UpdateExpired(jobCtx)

		s.jobMu.Lock()
		defer s.jobMu.Unlock()
		job.EndedAt = time.Now()
		if err != nil {
			job.Status = "failed"
			job.Error = err.Error()
			s.log.Error().Err(err).Str("job_id", jobID).Msg("update-expired job failed")
			return
		}
		job.Status = "completed"
		job.Result = counts
		s.log.Info().Str("job_id", jobID).Int("total", counts.Total).Msg("update-expired job completed")
	}()

	return c.JSON(http.StatusAccepted, map[string]any{
		"message": "Update-expired job started",
		"job_id":  jobID,
		"poll":    "/api/v1/admin/jobs/" + jobID,
	})
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")

	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	job := s.runningJob

	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	resp := map[string]any{
		"id":         job.ID,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}

	return c.JSON(http.StatusOK, resp)
}
