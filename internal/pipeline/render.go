package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/akakura-hackathon/LocAIver/internal/artifact"
	"github.com/akakura-hackathon/LocAIver/internal/gen"
	"github.com/akakura-hackathon/LocAIver/internal/metrics"
	"github.com/akakura-hackathon/LocAIver/internal/project"
	"github.com/akakura-hackathon/LocAIver/internal/prompt"
	"github.com/akakura-hackathon/LocAIver/internal/store"
	"github.com/akakura-hackathon/LocAIver/internal/story"
)

// RenderVideo runs the final stages: one clip per scene image, silent
// concatenation, background score, and the muxed result. Returns a signed
// URL for the finished video.
//
// A scene whose clip generation exhausts its retries is skipped rather than
// failing the render; the cut is assembled from the clips that succeeded.
func (p *Pipeline) RenderVideo(ctx context.Context, folder string) (string, error) {
	paths := project.NewPaths(folder, p.docTag)

	var input story.UserInput
	if err := store.ReadJSON(ctx, p.store, paths.UserInput(project.LangJA), &input); err != nil {
		return "", fmt.Errorf("load intake form: %w", err)
	}
	aspect := input.Format.Ratio()
	seconds := story.ClipSeconds(int(input.Seconds))

	version, err := artifact.LatestVersion(ctx, p.store, paths.JSONPrefix(), paths.SceneBase(project.LangEN), ".json")
	if err != nil {
		return "", fmt.Errorf("resolve latest scene version: %w", err)
	}
	var set story.SceneSet
	if err := store.ReadJSON(ctx, p.store, paths.Scene(project.LangEN, version), &set); err != nil {
		return "", fmt.Errorf("load scene version %d: %w", version, err)
	}

	images, err := artifact.LatestSceneImages(ctx, p.store, paths.ImagesPrefix(), paths.SceneImageBase(0))
	if err != nil {
		return "", fmt.Errorf("resolve scene images: %w", err)
	}

	// One clip per scene that has an image.
	var clipKeys []string
	skipped := 0
	for _, sc := range set.Scenes {
		img, ok := images[sc.SceneID]
		if !ok {
			log.Warn().Int("scene", sc.SceneID).Msg("No image for scene, skipping clip")
			skipped++
			continue
		}
		frame, err := p.store.Read(ctx, img.Key)
		if err != nil {
			return "", fmt.Errorf("load image %s: %w", img.Key, err)
		}

		clipKey := paths.Video(sc.SceneID)
		err = p.exec.Do(ctx, gen.KindVideo, "scene-clip", prompt.Clip(sc), func(ctx context.Context, current string) error {
			data, err := p.video.GenerateClip(ctx, current, frame, aspect, seconds)
			if err != nil {
				return err
			}
			return p.store.Write(ctx, clipKey, data, "video/mp4")
		})
		if err != nil {
			if gen.IsExhausted(err) {
				log.Warn().Err(err).Int("scene", sc.SceneID).
					Msg("Clip generation exhausted, assembling without this scene")
				skipped++
				continue
			}
			return "", fmt.Errorf("generate clip for scene %d: %w", sc.SceneID, err)
		}
		clipKeys = append(clipKeys, clipKey)
	}
	if len(clipKeys) == 0 {
		return "", fmt.Errorf("no clips were generated")
	}
	metrics.New("render").Dimension("folder", folder).
		Add("clips", len(clipKeys)).Add("skipped_scenes", skipped).Flush()

	workDir, err := os.MkdirTemp("", "locaiver-render-*")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	var localClips []string
	for i, key := range clipKeys {
		local := filepath.Join(workDir, fmt.Sprintf("clip_%d.mp4", i+1))
		if err := p.store.Download(ctx, key, local); err != nil {
			return "", fmt.Errorf("download clip %s: %w", key, err)
		}
		localClips = append(localClips, local)
	}

	// Silent cut.
	silentLocal := filepath.Join(workDir, "no_bgm.mp4")
	if err := p.media.Concat(ctx, localClips, silentLocal); err != nil {
		return "", err
	}
	if err := p.store.Upload(ctx, silentLocal, paths.Silent()); err != nil {
		return "", fmt.Errorf("store silent cut: %w", err)
	}

	// Without a music backend the silent cut is the final result.
	if p.music == nil {
		log.Warn().Str("folder", folder).Msg("No music backend configured, result has no score")
		if err := p.store.Upload(ctx, silentLocal, paths.Result()); err != nil {
			return "", fmt.Errorf("store result: %w", err)
		}
		return p.store.Sign(ctx, paths.Result(), p.signTTL)
	}

	// Background score from the translated story.
	var enStory story.Story
	if err := store.ReadJSON(ctx, p.store, paths.Story(project.LangEN), &enStory); err != nil {
		return "", fmt.Errorf("load translated story: %w", err)
	}
	musicPrompt, err := p.text.GenerateText(ctx, prompt.BGM(enStory.Story))
	if err != nil {
		return "", fmt.Errorf("write music prompt: %w", err)
	}

	bgmLocal := filepath.Join(workDir, "bgm.wav")
	err = p.exec.Do(ctx, gen.KindAudio, "bgm", musicPrompt, func(ctx context.Context, current string) error {
		audio, err := p.music.Generate(ctx, current, "")
		if err != nil {
			return err
		}
		return os.WriteFile(bgmLocal, audio, 0o644)
	})
	if err != nil {
		return "", fmt.Errorf("generate score: %w", err)
	}
	if err := p.store.Upload(ctx, bgmLocal, paths.BGM()); err != nil {
		return "", fmt.Errorf("store score: %w", err)
	}

	// Final mux.
	resultLocal := filepath.Join(workDir, "result.mp4")
	if err := p.media.Mux(ctx, silentLocal, bgmLocal, resultLocal); err != nil {
		return "", err
	}
	if err := p.store.Upload(ctx, resultLocal, paths.Result()); err != nil {
		return "", fmt.Errorf("store result: %w", err)
	}

	url, err := p.store.Sign(ctx, paths.Result(), p.signTTL)
	if err != nil {
		return "", fmt.Errorf("sign result: %w", err)
	}

	log.Info().Str("folder", folder).Int("clips", len(clipKeys)).
		Int("scene_version", version).Msg("Video rendered")
	return url, nil
}
