// Package config builds the process configuration once at startup.
//
// Every component receives its configuration (and its clients) at
// construction time — nothing reads the environment after Load returns, and
// nothing reconstructs a client mid-run. Sources, in increasing precedence:
// built-in defaults, an optional YAML file named by LOCAIVER_CONFIG, and
// environment variables (a .env file is loaded first when present).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Default model IDs. Overridable per deployment; the pipeline never hardcodes
// a model name outside this package.
const (
	DefaultTextModel       = "gemini-2.5-pro"
	DefaultPortraitModel   = "imagen-4.0-generate-001"
	DefaultSceneImageModel = "gemini-2.5-flash-image-preview"
	DefaultVideoModel      = "veo-3.0-fast-generate-001"
)

// DefaultSignTTL is the expiry for signed URLs handed back to callers.
// Signed URLs are never used for internal stage-to-stage transfer.
const DefaultSignTTL = 60 * time.Minute

// Config holds all settings for one process lifetime.
type Config struct {
	Port   string `yaml:"port"`
	Bucket string `yaml:"bucket"`

	GeminiAPIKey    string `yaml:"gemini_api_key"`
	TextModel       string `yaml:"text_model"`
	PortraitModel   string `yaml:"portrait_model"`
	SceneImageModel string `yaml:"scene_image_model"`
	VideoModel      string `yaml:"video_model"`

	// Lyria music generation goes through a Vertex AI predict endpoint; the
	// genai SDK has no music surface.
	LyriaEndpoint string `yaml:"lyria_endpoint"`
	LyriaToken    string `yaml:"lyria_token"`

	// DocTag is the label embedded in every artifact filename
	// (user_input_<tag>_ja.json and so on).
	DocTag string `yaml:"doc_tag"`

	FFmpegPath string        `yaml:"ffmpeg_path"`
	SignTTL    time.Duration `yaml:"sign_ttl"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Load builds the configuration from defaults, the optional YAML file, and
// the environment.
func Load() *Config {
	// Best-effort: a missing .env is the normal case in deployment.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg(".env file loaded")
	}

	cfg := &Config{
		Port:            "8080",
		TextModel:       DefaultTextModel,
		PortraitModel:   DefaultPortraitModel,
		SceneImageModel: DefaultSceneImageModel,
		VideoModel:      DefaultVideoModel,
		DocTag:          "akakura",
		FFmpegPath:      "ffmpeg",
		SignTTL:         DefaultSignTTL,
		ShutdownTimeout: 15 * time.Second,
	}

	if path := os.Getenv("LOCAIVER_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Config file not applied")
		}
	}

	applyEnv(&cfg.Port, "PORT")
	applyEnv(&cfg.Bucket, "BUCKET_NAME")
	applyEnv(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	applyEnv(&cfg.TextModel, "LOCAIVER_TEXT_MODEL")
	applyEnv(&cfg.PortraitModel, "LOCAIVER_PORTRAIT_MODEL")
	applyEnv(&cfg.SceneImageModel, "LOCAIVER_SCENE_IMAGE_MODEL")
	applyEnv(&cfg.VideoModel, "LOCAIVER_VIDEO_MODEL")
	applyEnv(&cfg.LyriaEndpoint, "LYRIA_ENDPOINT")
	applyEnv(&cfg.LyriaToken, "LYRIA_ACCESS_TOKEN")
	applyEnv(&cfg.DocTag, "LOCAIVER_DOC_TAG")
	applyEnv(&cfg.FFmpegPath, "FFMPEG_PATH")

	return cfg
}

// Validate reports the settings the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("BUCKET_NAME is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}

// applyFile overlays non-zero fields from a YAML file onto c.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	merge(&c.Port, overlay.Port)
	merge(&c.Bucket, overlay.Bucket)
	merge(&c.GeminiAPIKey, overlay.GeminiAPIKey)
	merge(&c.TextModel, overlay.TextModel)
	merge(&c.PortraitModel, overlay.PortraitModel)
	merge(&c.SceneImageModel, overlay.SceneImageModel)
	merge(&c.VideoModel, overlay.VideoModel)
	merge(&c.LyriaEndpoint, overlay.LyriaEndpoint)
	merge(&c.LyriaToken, overlay.LyriaToken)
	merge(&c.DocTag, overlay.DocTag)
	merge(&c.FFmpegPath, overlay.FFmpegPath)
	if overlay.SignTTL > 0 {
		c.SignTTL = overlay.SignTTL
	}
	if overlay.ShutdownTimeout > 0 {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	return nil
}

func applyEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func merge(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
