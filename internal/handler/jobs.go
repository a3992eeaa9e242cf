package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/polyvox/api/internal/middleware"
	"github.com/polyvox/api/internal/model"
	"github.com/polyvox/api/internal/service"
	"github.com/polyvox/api/internal/store"
	"github.com/polyvox/api/pkg/response"
)

type JobsHandler struct {
	service *service.JobService
}

func NewJobsHandler(svc *service.JobService) *JobsHandler {
	return &JobsHandler{service: svc}
}

// List handles GET /api/jobs
// @Summary      List jobs
// @Description  List all processing jobs owned by the caller, newest first
// @Tags         Jobs
// @Produce      json
// @Success      200 {array} model.JobResponse
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/jobs [get]
func (h *JobsHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	jobs, err := h.service.ListJobs(c.Context(), userID)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	out := make([]*model.JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, model.NewJobResponse(job))
	}

	return response.OK(c, out)
}

// Get handles GET /api/jobs/:jobId
// @Summary      Get job
// @Description  Fetch the status and result of a single job
// @Tags         Jobs
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} model.JobResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/jobs/{jobId} [get]
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.GetJob(c.Context(), userID, jobID)
	if err != nil {
		return jobError(c, err)
	}

	return response.OK(c, model.NewJobResponse(job))
}

// Delete handles DELETE /api/jobs/:jobId
// @Summary      Delete job
// @Description  Remove a job record and its audio artifacts
// @Tags         Jobs
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      204 "No Content"
// @Failure      401 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/jobs/{jobId} [delete]
func (h *JobsHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	if err := h.service.DeleteJob(c.Context(), userID, jobID); err != nil {
		return jobError(c, err)
	}

	return response.NoContent(c)
}

func jobError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return response.NotFound(c, "Job not found")
	case errors.Is(err, service.ErrForbidden):
		return response.Forbidden(c, "You do not own this job")
	default:
		return response.ServiceError(c, err.Error())
	}
}
