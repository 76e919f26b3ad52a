package main

import (
	"fmt"
	"log"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"wordspark-backend/cmd/internal/controller"
	"wordspark-backend/internal/config"
	"wordspark-backend/internal/db"
	"wordspark-backend/internal/llm"
	"wordspark-backend/internal/model"
	"wordspark-backend/internal/practice"
	"wordspark-backend/internal/repository"
	"wordspark-backend/internal/scheduler"
	"wordspark-backend/internal/service"
	logger "wordspark-backend/pkg/logging"
	"wordspark-backend/pkg/middleware"
	"wordspark-backend/utilities"
)

func main() {
	printStartUpBanner()

	// Secrets live in .env locally; absence is fine in deployed environments.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on the environment")
	}

	cfg, err := config.LoadConfig("config.xml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init("logs", cfg.RequestDump)

	db.InitDBFromConfig(cfg)
	if err := db.GetDB().AutoMigrate(
		&model.User{},
		&model.VocabList{},
		&model.VocabItem{},
		&model.MasteryRecord{},
		&model.ListCompletion{},
		&model.Story{},
		&model.StoryBit{},
	); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Repositories.
	userRepo := repository.NewUserRepository()
	vocabRepo := repository.NewVocabRepository()
	masteryRepo := repository.NewMasteryRepository()
	storyRepo := repository.NewStoryRepository()

	// AI collaborators. The server runs without them; generation endpoints
	// just fail until they are configured.
	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		logger.Warn("LLM client unavailable: %v", err)
	}
	var diffusion *llm.StableDiffusionWrapper
	if token := cfg.THIRD_PARTY.HFToken(); token != "" {
		if err := llm.AuthenticateHuggingFace(token); err != nil {
			logger.Warn("Hugging Face authentication failed: %v", err)
		} else {
			diffusion = &llm.StableDiffusionWrapper{AccessToken: token}
		}
	}

	// Practice session store: Redis when configured, in-process otherwise.
	sessionTTL := time.Duration(cfg.Authentication.SessionTimeout) * time.Minute
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	var sessionStore practice.SessionStore
	var memStore *practice.MemoryStore
	if addr := config.RedisAddr(); addr != "" {
		redisStore, err := practice.NewRedisStore(addr, sessionTTL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		sessionStore = redisStore
		logger.Info("Practice sessions stored in Redis at %s", addr)
	} else {
		memStore = practice.NewMemoryStore(sessionTTL)
		sessionStore = memStore
	}

	// Services.
	authService := service.NewAuthService(userRepo)
	vocabService := service.NewVocabService(vocabRepo, llmClient)
	practiceService := service.NewPracticeService(vocabRepo, masteryRepo, sessionStore, utilities.GlobalEventBus)
	progressService := service.NewProgressService(vocabRepo, masteryRepo)
	storyService := service.NewStoryService(storyRepo, vocabRepo, llmClient, diffusion, utilities.GlobalEventBus)
	audioService := service.NewAudioService(vocabRepo, storyRepo, cfg.THIRD_PARTY.TTSURL)

	// Event listeners.
	service.InitAudioEventListeners(vocabRepo, storyRepo, cfg.THIRD_PARTY.TTSURL)
	utilities.GlobalEventBus.Subscribe(utilities.EventListCompleted, func(data interface{}) {
		if ev, ok := data.(service.ListCompletedEvent); ok {
			logger.Info("User %d completed list %d", ev.UserID, ev.ListID)
		}
	})

	// Background housekeeping.
	sched := scheduler.New(memStore, storyRepo)
	sched.Start()
	defer sched.Stop()

	// HTTP server.
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}
	if cfg.Authentication.EnableTokenAuth {
		r.Use(utilities.AuthMiddleware())
	}

	controller.RegisterRoutes(r, authService, vocabService, practiceService, progressService, storyService, audioService)

	addr := fmt.Sprintf("%s:%d", cfg.Context.Host, cfg.Context.Port)
	logger.Info("WordSpark API listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("WORDSPARK", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("WORDSPARK API (v%s)\n\n", "1.0.0")
}
