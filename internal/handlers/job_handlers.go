package handlers

import (
	"net/http"

	"eventops/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

// JobHandlers exposes background scheduler state for operators
type JobHandlers struct {
	scheduler *background.JobScheduler
}

func NewJobHandlers(scheduler *background.JobScheduler) *JobHandlers {
	return &JobHandlers{scheduler: scheduler}
}

func (h *JobHandlers) GetJobStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.GetJobStatus())
}
