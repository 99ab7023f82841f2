// Package httpapi exposes question authoring and assignment lookup over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"question_cycle_service/internal/app"
	"question_cycle_service/internal/domain/question"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AssignmentService is the part of app.AssignmentService the API needs.
type AssignmentService interface {
	Resolve(ctx context.Context, region string) (app.Assignment, error)
	CreateQuestion(ctx context.Context, region, text string, assignedCycle int) (*question.Question, error)
	ListQuestions(ctx context.Context) ([]*question.Question, error)
	CycleInfo() app.CycleInfo
}

type createQuestionRequest struct {
	Region        string `json:"region" binding:"required"`
	Text          string `json:"text" binding:"required"`
	AssignedCycle int    `json:"assignedCycle" binding:"required,min=1"`
}

type cycleResponse struct {
	Cycle     int    `json:"cycle"`
	StartedAt string `json:"startedAt"`
	NextStart string `json:"nextStart"`
	Timezone  string `json:"timezone"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	svc    AssignmentService
	logger *logrus.Entry
}

// NewRouter builds the gin engine. metricsHandler is mounted at /metrics when not nil.
func NewRouter(svc AssignmentService, logger *logrus.Entry, metricsHandler http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	h := &handlers{svc: svc, logger: logger}
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	api := r.Group("/api")
	api.POST("/questions", h.createQuestion)
	api.GET("/questions", h.getAssignedQuestion)
	api.GET("/questions/all", h.listQuestions)
	api.GET("/cycle", h.currentCycle)
	return r
}

func (h *handlers) createQuestion(c *gin.Context) {
	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	q, err := h.svc.CreateQuestion(c.Request.Context(), req.Region, req.Text, req.AssignedCycle)
	if err != nil {
		if errors.Is(err, question.ErrInvalid) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to create question")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to create question"})
		return
	}
	c.JSON(http.StatusCreated, q)
}

// getAssignedQuestion answers with the question JSON, or with the plain-text
// not-found message when nothing is assigned for the current cycle.
func (h *handlers) getAssignedQuestion(c *gin.Context) {
	region := c.Query("region")
	if region == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "region query parameter is required"})
		return
	}

	assignment, err := h.svc.Resolve(c.Request.Context(), region)
	if err != nil {
		h.logger.WithError(err).WithField("region", region).Error("Failed to resolve assigned question")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to resolve assigned question"})
		return
	}
	if !assignment.Found() {
		c.String(http.StatusOK, assignment.Message())
		return
	}
	c.JSON(http.StatusOK, assignment.Question)
}

func (h *handlers) listQuestions(c *gin.Context) {
	all, err := h.svc.ListQuestions(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list questions")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to list questions"})
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *handlers) currentCycle(c *gin.Context) {
	info := h.svc.CycleInfo()
	c.JSON(http.StatusOK, cycleResponse{
		Cycle:     info.Cycle,
		StartedAt: info.StartedAt.Format(time.RFC3339),
		NextStart: info.NextStart.Format(time.RFC3339),
		Timezone:  info.Timezone,
	})
}

func requestLogger(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("HTTP request handled")
	}
}
