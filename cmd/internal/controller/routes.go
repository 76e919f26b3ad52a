package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"wordspark-backend/internal/service"
	"wordspark-backend/pkg/middleware"
)

// RegisterRoutes registers all route groups and their endpoints. Generation
// endpoints hit paid upstream APIs and are rate limited per client.
func RegisterRoutes(r *gin.Engine,
	authService service.AuthService,
	vocabService service.VocabService,
	practiceService service.PracticeService,
	progressService service.ProgressService,
	storyService service.StoryService,
	audioService service.AudioService,
) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	generateLimiter := middleware.RateLimitMiddleware(rate.Limit(0.2), 3)

	authCtrl := NewAuthController(authService)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authCtrl.Register)
		authRoutes.POST("/login", authCtrl.Login)
		authRoutes.POST("/refresh", authCtrl.Refresh)
	}

	listCtrl := NewListController(vocabService)
	practiceCtrl := NewPracticeController(practiceService)
	progressCtrl := NewProgressController(progressService)
	listRoutes := r.Group("/lists")
	{
		listRoutes.POST("", listCtrl.CreateList)
		listRoutes.GET("", listCtrl.GetLists)
		listRoutes.POST("/generate", generateLimiter, listCtrl.GenerateList)
		listRoutes.GET("/:id", listCtrl.GetList)
		listRoutes.PUT("/:id", listCtrl.UpdateList)
		listRoutes.DELETE("/:id", listCtrl.DeleteList)
		listRoutes.POST("/:id/items", listCtrl.AddItem)
		listRoutes.DELETE("/:id/items/:itemID", listCtrl.RemoveItem)
		listRoutes.POST("/:id/import", listCtrl.ImportItems)
		listRoutes.GET("/:id/practice-sheet", listCtrl.ExportSheet)
		listRoutes.POST("/:id/practice/start", practiceCtrl.StartSession)
		listRoutes.GET("/:id/progress", progressCtrl.ListProgress)
	}

	practiceRoutes := r.Group("/practice")
	{
		practiceRoutes.GET("/:sessionID", practiceCtrl.Current)
		practiceRoutes.POST("/:sessionID/submit", practiceCtrl.Submit)
		practiceRoutes.POST("/:sessionID/advance", practiceCtrl.Advance)
		practiceRoutes.POST("/:sessionID/retry", practiceCtrl.Retry)
		practiceRoutes.POST("/:sessionID/reset", practiceCtrl.Reset)
	}

	progressRoutes := r.Group("/progress")
	{
		progressRoutes.GET("/overview", progressCtrl.Overview)
		progressRoutes.GET("/completions", progressCtrl.Completions)
	}

	storyCtrl := NewStoryController(storyService)
	storyRoutes := r.Group("/stories")
	{
		storyRoutes.GET("", storyCtrl.GetStories)
		storyRoutes.POST("/generate", generateLimiter, storyCtrl.Generate)
		storyRoutes.GET("/:id", storyCtrl.GetStory)
		storyRoutes.DELETE("/:id", storyCtrl.DeleteStory)
		storyRoutes.GET("/:id/book", storyCtrl.ExportBook)
	}

	audioCtrl := NewAudioController(audioService)
	r.GET("/audio/items/:id", audioCtrl.PronounceItem)
	r.POST("/audio/tts", audioCtrl.Synthesize)

	staticCtrl := NewStaticController()
	r.GET("/download/:filename", staticCtrl.Download)
	r.StaticFS("/static", http.Dir("./working"))
}
