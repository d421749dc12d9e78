package main

import (
	"log"
	"strings"

	"github.com/gamfolz-glitch/pollapp/internal/config"
	"github.com/gamfolz-glitch/pollapp/internal/database"
	"github.com/gamfolz-glitch/pollapp/internal/handlers"
	"github.com/gamfolz-glitch/pollapp/internal/middleware"
	"github.com/gamfolz-glitch/pollapp/internal/services"
	"github.com/gamfolz-glitch/pollapp/internal/ws"

	_ "github.com/gamfolz-glitch/pollapp/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Poll Platform API
// @version         1.0
// @description     API for creating polls, collecting submissions and viewing live results
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	var timerStore services.TimerStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		timerStore = services.NewRedisTimerStore(client)
		log.Println("timer store: redis")
	} else {
		timerStore = services.NewMemoryTimerStore()
		log.Println("REDIS_ADDR not set, timer store: in-process")
	}

	hub := ws.NewHub()

	authService := services.NewAuthService(db, cfg.JWTSecret)
	pollService := services.NewPollService(db)
	eligibilityService := services.NewEligibilityService(db)
	timerService := services.NewTimerService(timerStore)
	scoringService := services.NewScoringService(db)
	submissionService := services.NewSubmissionService(db, pollService, eligibilityService, timerService, scoringService)
	statsService := services.NewStatsService(db)

	authHandler := handlers.NewAuthHandler(authService)
	pollHandler := handlers.NewPollHandler(pollService)
	questionHandler := handlers.NewQuestionHandler(pollService)
	choiceHandler := handlers.NewChoiceHandler(pollService)
	publicHandler := handlers.NewPublicHandler(pollService, submissionService, timerService, statsService, hub)
	statsHandler := handlers.NewStatsHandler(pollService, statsService)
	liveHandler := handlers.NewLiveHandler(pollService, statsService, hub)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws/live/:code", liveHandler.Stream)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		polls := api.Group("/polls")
		polls.Use(middleware.JWTAuth(authService))
		{
			polls.GET("", pollHandler.ListPolls)
			polls.POST("", pollHandler.CreatePoll)
			polls.GET("/:id", pollHandler.GetPoll)
			polls.PUT("/:id", pollHandler.UpdatePoll)
			polls.DELETE("/:id", pollHandler.DeletePoll)
			polls.POST("/:id/questions", questionHandler.CreateQuestion)
			polls.GET("/:id/stats", statsHandler.Stats)
			polls.GET("/:id/responses", statsHandler.Responses)
		}

		questions := api.Group("/questions")
		questions.Use(middleware.JWTAuth(authService))
		{
			questions.PUT("/:id", questionHandler.UpdateQuestion)
			questions.DELETE("/:id", questionHandler.DeleteQuestion)
			questions.POST("/:id/choices", choiceHandler.CreateChoice)
		}

		choices := api.Group("/choices")
		choices.Use(middleware.JWTAuth(authService))
		{
			choices.PUT("/:id", choiceHandler.UpdateChoice)
			choices.DELETE("/:id", choiceHandler.DeleteChoice)
		}

		public := api.Group("/p")
		public.Use(middleware.ParticipantSession(), middleware.OptionalAuth(authService))
		{
			public.GET("/:code", publicHandler.GetPoll)
			public.GET("/:code/time", publicHandler.TimeLeft)
			public.POST("/:code/submit", publicHandler.Submit)
			public.GET("/:code/result", publicHandler.Result)
		}

		api.GET("/live", liveHandler.Snapshot)
	}

	log.Printf("server listening on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
