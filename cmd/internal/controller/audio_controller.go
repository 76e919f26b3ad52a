package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"wordspark-backend/internal/service"
)

type AudioController struct {
	AudioService service.AudioService
}

func NewAudioController(audioService service.AudioService) *AudioController {
	return &AudioController{AudioService: audioService}
}

// PronounceItem handles GET /audio/items/:id
func (ac *AudioController) PronounceItem(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	path, err := ac.AudioService.PronounceItem(uid, itemID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your item"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "TTS failed: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"audio_url": "/static/" + path})
}

// Synthesize handles POST /audio/tts
func (ac *AudioController) Synthesize(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	path, err := ac.AudioService.SynthesizeText(req.Text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "TTS failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audio_url": "/static/" + path})
}
