// Command server runs the LocAIver HTTP service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/akakura-hackathon/LocAIver/internal/config"
	"github.com/akakura-hackathon/LocAIver/internal/gen"
	"github.com/akakura-hackathon/LocAIver/internal/logging"
	"github.com/akakura-hackathon/LocAIver/internal/media"
	"github.com/akakura-hackathon/LocAIver/internal/pipeline"
	"github.com/akakura-hackathon/LocAIver/internal/server"
	"github.com/akakura-hackathon/LocAIver/internal/store"
)

func main() {
	logging.Init()

	start := time.Now()
	ctx := context.Background()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS configuration")
	}
	blobs := store.NewS3Store(s3.NewFromConfig(awsCfg), cfg.Bucket)

	models, err := gen.NewModels(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create model client")
	}

	var music pipeline.MusicModel
	if cfg.LyriaEndpoint != "" {
		music = gen.NewLyriaClient(cfg.LyriaEndpoint, cfg.LyriaToken)
	}

	pipe := pipeline.New(pipeline.Options{
		Store:     blobs,
		Text:      models,
		Image:     models,
		Video:     models,
		Music:     music,
		Executor:  gen.NewExecutor(models),
		Assembler: media.NewAssembler(cfg.FFmpegPath),
		DocTag:    cfg.DocTag,
		SignTTL:   cfg.SignTTL,
	})

	logging.NewStartupLogger("locaiver").
		Bucket("artifacts", cfg.Bucket).
		Model("text", cfg.TextModel).
		Model("portrait", cfg.PortraitModel).
		Model("scene_image", cfg.SceneImageModel).
		Model("video", cfg.VideoModel).
		Feature("bgm", music != nil).
		Config("doc_tag", cfg.DocTag).
		Config("port", cfg.Port).
		InitDuration(time.Since(start)).
		Log()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.New(pipe).Router(),
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()
	log.Info().Str("addr", srv.Addr).Msg("Server listening")

	<-done
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
