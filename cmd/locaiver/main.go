// Command locaiver inspects project state in the artifact store: latest
// document versions, the resolved scene/image mapping, and a signed link to
// the finished video.
package main

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/akakura-hackathon/LocAIver/internal/artifact"
	"github.com/akakura-hackathon/LocAIver/internal/config"
	"github.com/akakura-hackathon/LocAIver/internal/logging"
	"github.com/akakura-hackathon/LocAIver/internal/project"
	"github.com/akakura-hackathon/LocAIver/internal/store"
)

var folderFlag string

var rootCmd = &cobra.Command{
	Use:   "locaiver",
	Short: "Inspect LocAIver project artifacts",
	Long: `locaiver inspects the artifact store of a video project: which document
versions exist, which image serves each scene, and where the finished
video is.

Examples:
  locaiver latest -f Project-003/
  locaiver scenes -f Project-003/
  locaiver video  -f Project-003/`,
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the latest version of each project document",
	Run:   runLatest,
}

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "Show which image version serves each scene",
	Run:   runScenes,
}

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Print a signed URL for the finished video",
	Run:   runVideo,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&folderFlag, "folder", "f", "", "Project folder prefix (e.g. Project-003/)")
	rootCmd.MarkPersistentFlagRequired("folder")
	rootCmd.AddCommand(latestCmd, scenesCmd, videoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initStore builds the S3-backed store from config, fatally on failure.
func initStore() (context.Context, store.Store, *config.Config) {
	logging.Init()
	cfg := config.Load()
	if cfg.Bucket == "" {
		log.Fatal().Msg("BUCKET_NAME is required")
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS configuration")
	}
	return ctx, store.NewS3Store(s3.NewFromConfig(awsCfg), cfg.Bucket), cfg
}

func runLatest(cmd *cobra.Command, args []string) {
	ctx, blobs, cfg := initStore()
	paths := project.NewPaths(folderFlag, cfg.DocTag)

	for _, lang := range []project.Lang{project.LangJA, project.LangEN} {
		version, err := artifact.LatestVersion(ctx, blobs, paths.JSONPrefix(), paths.SceneBase(lang), ".json")
		if err != nil {
			fmt.Printf("scene (%s): none\n", lang)
			continue
		}
		fmt.Printf("scene (%s): v%d  %s\n", lang, version, paths.Scene(lang, version))
	}
}

func runScenes(cmd *cobra.Command, args []string) {
	ctx, blobs, cfg := initStore()
	paths := project.NewPaths(folderFlag, cfg.DocTag)

	images, err := artifact.LatestSceneImages(ctx, blobs, paths.ImagesPrefix(), paths.SceneImageBase(0))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve scene images")
	}
	if len(images) == 0 {
		fmt.Println("no scene images")
		return
	}
	for slot := 1; slot <= 4; slot++ {
		img, ok := images[slot]
		if !ok {
			fmt.Printf("scene %d: missing\n", slot)
			continue
		}
		fmt.Printf("scene %d: v%d  %s\n", slot, img.Version, img.Key)
	}
}

func runVideo(cmd *cobra.Command, args []string) {
	ctx, blobs, cfg := initStore()
	paths := project.NewPaths(folderFlag, cfg.DocTag)

	url, err := blobs.Sign(ctx, paths.Result(), cfg.SignTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign result video")
	}
	fmt.Println(url)
}
