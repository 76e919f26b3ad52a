package controller

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
)

type StaticController struct{}

func NewStaticController() *StaticController {
	return &StaticController{}
}

// Download serves a generated PDF as an attachment.
func (sc *StaticController) Download(c *gin.Context) {
	filename := c.Param("filename")
	filePath := "./working/books/" + filename
	if filepath.Ext(filename) == ".pdf" {
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Header("Content-Type", "application/pdf")
	}
	c.File(filePath)
}
