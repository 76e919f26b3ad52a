package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"wordspark-backend/internal/learning"
	"wordspark-backend/internal/practice"
	"wordspark-backend/internal/service"
)

type PracticeController struct {
	PracticeService service.PracticeService
}

func NewPracticeController(practiceService service.PracticeService) *PracticeController {
	return &PracticeController{PracticeService: practiceService}
}

// practiceError maps the learning core's sentinel errors onto HTTP codes.
// A ledger write failure still carries the graded view so the client can
// show the result and re-submit.
func practiceError(c *gin.Context, view *service.SessionView, err error) {
	switch {
	case errors.Is(err, learning.ErrInsufficientPoolSize), errors.Is(err, learning.ErrInvalidPool):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, learning.ErrLedgerWrite):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "session": view})
	case errors.Is(err, learning.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, learning.ErrGenerationPrecondition), errors.Is(err, learning.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, practice.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Practice session not found"})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your session"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// StartSession handles POST /lists/:id/practice/start
func (pc *PracticeController) StartSession(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := pc.PracticeService.StartSession(c.Request.Context(), uid, listID)
	if err != nil {
		practiceError(c, view, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Current handles GET /practice/:sessionID
func (pc *PracticeController) Current(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := pc.PracticeService.Current(c.Request.Context(), uid, c.Param("sessionID"))
	if err != nil {
		practiceError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Submit handles POST /practice/:sessionID/submit
func (pc *PracticeController) Submit(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var ans learning.Answer
	if err := c.ShouldBindJSON(&ans); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	view, err := pc.PracticeService.Submit(c.Request.Context(), uid, c.Param("sessionID"), ans)
	if err != nil {
		practiceError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Advance handles POST /practice/:sessionID/advance
func (pc *PracticeController) Advance(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := pc.PracticeService.Advance(c.Request.Context(), uid, c.Param("sessionID"))
	if err != nil {
		practiceError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Retry handles POST /practice/:sessionID/retry
func (pc *PracticeController) Retry(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := pc.PracticeService.Retry(c.Request.Context(), uid, c.Param("sessionID"))
	if err != nil {
		practiceError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Reset handles POST /practice/:sessionID/reset
func (pc *PracticeController) Reset(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := pc.PracticeService.Reset(c.Request.Context(), uid, c.Param("sessionID"))
	if err != nil {
		practiceError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
