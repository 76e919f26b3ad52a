package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"wordspark-backend/internal/model"
	"wordspark-backend/internal/service"
)

type ListController struct {
	VocabService service.VocabService
}

func NewListController(vocabService service.VocabService) *ListController {
	return &ListController{VocabService: vocabService}
}

func (lc *ListController) listError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your list"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// CreateList handles POST /lists
func (lc *ListController) CreateList(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Title       string              `json:"title" binding:"required"`
		Description string              `json:"description"`
		SourceLang  string              `json:"source_lang" binding:"required"`
		TargetLang  string              `json:"target_lang" binding:"required"`
		Items       []service.ItemInput `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	list := &model.VocabList{
		Title:       req.Title,
		Description: req.Description,
		SourceLang:  req.SourceLang,
		TargetLang:  req.TargetLang,
	}
	if err := lc.VocabService.CreateList(uid, list, req.Items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create list"})
		return
	}
	c.JSON(http.StatusCreated, list)
}

// GetLists handles GET /lists
func (lc *ListController) GetLists(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	lists, err := lc.VocabService.GetLists(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lists)
}

// GetList handles GET /lists/:id
func (lc *ListController) GetList(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := lc.VocabService.GetList(uid, listID)
	if err != nil {
		lc.listError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateList handles PUT /lists/:id
func (lc *ListController) UpdateList(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		SourceLang  string `json:"source_lang" binding:"required"`
		TargetLang  string `json:"target_lang" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	list := &model.VocabList{
		ID:          listID,
		Title:       req.Title,
		Description: req.Description,
		SourceLang:  req.SourceLang,
		TargetLang:  req.TargetLang,
	}
	if err := lc.VocabService.UpdateList(uid, list); err != nil {
		lc.listError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "List updated"})
}

// DeleteList handles DELETE /lists/:id
func (lc *ListController) DeleteList(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := lc.VocabService.DeleteList(uid, listID); err != nil {
		lc.listError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "List deleted"})
}

// AddItem handles POST /lists/:id/items
func (lc *ListController) AddItem(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input service.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	item, err := lc.VocabService.AddItem(uid, listID, input)
	if err != nil {
		lc.listError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// RemoveItem handles DELETE /lists/:id/items/:itemID
func (lc *ListController) RemoveItem(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemID")
	if !ok {
		return
	}
	if err := lc.VocabService.RemoveItem(uid, listID, itemID); err != nil {
		lc.listError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed"})
}

// ImportItems handles POST /lists/:id/import (multipart xlsx upload)
func (lc *ListController) ImportItems(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}
	defer f.Close()

	result, err := lc.VocabService.ImportFromExcel(uid, listID, f)
	if err != nil {
		lc.listError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GenerateList handles POST /lists/generate
func (lc *ListController) GenerateList(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Topic      string `json:"topic" binding:"required"`
		SourceLang string `json:"source_lang" binding:"required"`
		TargetLang string `json:"target_lang" binding:"required"`
		Count      int    `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	list, err := lc.VocabService.GenerateList(c.Request.Context(), uid, req.Topic, req.SourceLang, req.TargetLang, req.Count)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "List generation failed"})
		return
	}
	c.JSON(http.StatusCreated, list)
}

// ExportSheet handles GET /lists/:id/sheet
func (lc *ListController) ExportSheet(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	path, err := lc.VocabService.ExportPracticeSheet(uid, listID)
	if err != nil {
		lc.listError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sheet_url": "/static/" + path})
}
