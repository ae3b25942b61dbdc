package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vnkhanh/podcastr-backend/config"
	"github.com/vnkhanh/podcastr-backend/middleware"
	"github.com/vnkhanh/podcastr-backend/routes"
	"github.com/vnkhanh/podcastr-backend/services"
	"github.com/vnkhanh/podcastr-backend/utils"
	"github.com/vnkhanh/podcastr-backend/ws"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Không tìm thấy file .env")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cấu hình không hợp lệ: %w", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := config.InitDB(cfg)

	hub := ws.NewHub()
	blobs := services.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StorageBucket, cfg.StoragePublic, cfg.StorageURLTTL)
	podcastRepo := services.NewGormPodcastRepository(db)
	userRepo := services.NewGormUserRepository(db)
	fileRepo := services.NewGormFileRepository(db)

	podcastSvc := services.NewPodcastService(podcastRepo, userRepo, fileRepo, blobs, hub, services.PodcastPolicy{
		LimitPerUser: cfg.PodcastLimitPerUser,
		ExemptEmails: cfg.LimitExemptEmails,
	})
	userSvc := services.NewUserService(userRepo, podcastRepo)

	var synth services.AudioSynthesizer
	if tts, err := services.NewGoogleSynthesizer(ctx, cfg.GoogleCredentialsFile, cfg.TTSVoiceMap); err != nil {
		log.Printf("Google TTS chưa sẵn sàng, tắt sinh audio: %v", err)
	} else {
		defer tts.Close()
		synth = tts
	}

	var writer services.PromptWriter
	if gemini, err := services.NewGeminiPromptWriter(ctx, cfg.GeminiAPIKey); err != nil {
		log.Printf("Gemini chưa sẵn sàng, tắt gợi ý prompt: %v", err)
	} else {
		defer gemini.Close()
		writer = gemini
	}

	images := services.NewOpenAIImageGenerator(cfg.ImageAPIURL, cfg.ImageAPIKey, cfg.ImageModel)
	tracker := services.NewGenerationTracker(hub)
	generationSvc := services.NewGenerationService(synth, images, writer, blobs, fileRepo, userRepo, tracker)

	// Xác thực: JWT local trước, sau đó Clerk (nếu có cấu hình)
	tokens := utils.NewSessionTokens(cfg.JWTSecret, 24*time.Hour)
	verifiers := utils.ChainVerifier{tokens}
	if cfg.ClerkSecretKey != "" {
		clerkVerifier, err := utils.NewClerkVerifier(cfg.ClerkSecretKey)
		if err != nil {
			return err
		}
		verifiers = append(verifiers, clerkVerifier)
	}

	services.NewCleanupJob(fileRepo, blobs, cfg.UploadTTL, 6*time.Hour).Start(ctx)

	r := gin.Default()

	//Bật CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r = routes.SetupRouter(r, routes.Deps{
		DB:         db,
		Podcasts:   podcastSvc,
		Users:      userSvc,
		Generation: generationSvc,
		Hub:        hub,
		Verifier:   verifiers,
		Google:     utils.NewGoogleIDVerifier(cfg.GoogleClientID),
		Tokens:     tokens,
		Limiter:    middleware.NewRateLimiter(middleware.PerMinute(cfg.GenerateRatePerMin), cfg.GenerateBurst),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Println("Server running at Port:" + cfg.Port)
	return serve(ctx, srv, 15*time.Second)
}

// serve chạy srv tới khi ctx bị hủy (SIGINT/SIGTERM) rồi shutdown có thời hạn.
func serve(ctx context.Context, srv *http.Server, grace time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("Nhận tín hiệu dừng, đang tắt server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("Server đã dừng")
	return nil
}
