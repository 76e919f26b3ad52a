package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wordspark-backend/internal/service"
)

type ProgressController struct {
	ProgressService service.ProgressService
}

func NewProgressController(progressService service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// Overview handles GET /progress/overview
func (pc *ProgressController) Overview(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	overview, err := pc.ProgressService.Overview(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build overview"})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// ListProgress handles GET /progress/lists/:id
func (pc *ProgressController) ListProgress(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	progress, err := pc.ProgressService.ListProgress(uid, listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load progress"})
		return
	}
	c.JSON(http.StatusOK, progress)
}

// Completions handles GET /progress/completions
func (pc *ProgressController) Completions(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	completions, err := pc.ProgressService.Completions(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load completions"})
		return
	}
	c.JSON(http.StatusOK, completions)
}
