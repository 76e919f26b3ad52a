package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"wordspark-backend/internal/service"
)

type StoryController struct {
	StoryService service.StoryService
}

func NewStoryController(storyService service.StoryService) *StoryController {
	return &StoryController{StoryService: storyService}
}

func (sc *StoryController) storyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your story"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Generate handles POST /stories/generate. The story row is returned right
// away in status generating; clients poll until it flips to ready.
func (sc *StoryController) Generate(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		ListID uint `json:"list_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	story, err := sc.StoryService.GenerateStory(uid, req.ListID)
	if err != nil {
		sc.storyError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, story)
}

// GetStories handles GET /stories
func (sc *StoryController) GetStories(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	stories, err := sc.StoryService.GetStories(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stories)
}

// GetStory handles GET /stories/:id
func (sc *StoryController) GetStory(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	story, err := sc.StoryService.GetStory(uid, storyID)
	if err != nil {
		sc.storyError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

// DeleteStory handles DELETE /stories/:id
func (sc *StoryController) DeleteStory(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := sc.StoryService.DeleteStory(uid, storyID); err != nil {
		sc.storyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Story deleted"})
}

// ExportBook handles GET /stories/:id/book
func (sc *StoryController) ExportBook(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	path, err := sc.StoryService.ExportBook(uid, storyID)
	if err != nil {
		sc.storyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book_url": "/static/" + path})
}
