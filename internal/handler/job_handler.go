package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/init-51/FinInsight/internal/executor"
	"github.com/init-51/FinInsight/internal/model"
	"github.com/init-51/FinInsight/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JobHandler handles backtest job HTTP requests
type JobHandler struct {
	backtestService *service.BacktestService
	logger          *zap.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(backtestService *service.BacktestService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		backtestService: backtestService,
		logger:          logger,
	}
}

// SubmitBacktest handles submitting a new backtest job
func (h *JobHandler) SubmitBacktest(c *gin.Context) {
	var request model.BacktestRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID, err := h.backtestService.Submit(&request.Portfolio)
	if err != nil {
		if errors.Is(err, executor.ErrQueueFull) {
			h.logger.Warn("Backtest submission rejected, queue full")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "job queue is full, try again later"})
			return
		}
		if errors.Is(err, executor.ErrStopped) {
			h.logger.Warn("Backtest submission rejected, executor stopped")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service is shutting down"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, model.JobSubmitResponse{JobID: jobID})
}

// GetJobStatus handles retrieving the current state of a job
func (h *JobHandler) GetJobStatus(c *gin.Context) {
	jobID := c.Param("id")

	job, err := h.backtestService.Status(jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		h.logger.Error("Failed to get job status",
			zap.Error(err),
			zap.String("jobID", jobID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve job status"})
		return
	}

	c.JSON(http.StatusOK, model.JobStatusResponse{
		JobID:  jobID,
		Status: job.State,
		Error:  job.Error,
	})
}

// GetJobResults handles retrieving the results of a completed job
func (h *JobHandler) GetJobResults(c *gin.Context) {
	jobID := c.Param("id")

	response, err := h.backtestService.Result(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		h.logger.Error("Failed to get job results",
			zap.Error(err),
			zap.String("jobID", jobID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve job results"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetHistory handles listing recent backtest summaries
func (h *JobHandler) GetHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	items, err := h.backtestService.History(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list backtest history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve backtest history"})
		return
	}

	if items == nil {
		items = []model.BacktestHistoryItem{}
	}
	c.JSON(http.StatusOK, items)
}
