// Package media assembles the final video with ffmpeg: concatenating the
// scene clips into a silent cut, then muxing the generated score under it.
// Clips are stream-copied, never re-encoded.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Assembler shells out to ffmpeg for concat and mux.
type Assembler struct {
	ffmpegPath string
}

// NewAssembler builds an Assembler. ffmpegPath defaults to "ffmpeg" on PATH.
func NewAssembler(ffmpegPath string) *Assembler {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Assembler{ffmpegPath: ffmpegPath}
}

// buildConcatArgs builds the arguments for a stream-copy concatenation with
// the audio track dropped.
func buildConcatArgs(listPath, outputPath string) []string {
	return []string{
		"-y",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c:v", "copy",
		"-an",
		outputPath,
	}
}

// buildMuxArgs builds the arguments that lay the score under the silent cut.
// -shortest trims the track to the video length.
func buildMuxArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outputPath,
	}
}

// Concat joins clipPaths in order into outputPath, video stream only. The
// concat list file is written next to the output.
func (a *Assembler) Concat(ctx context.Context, clipPaths []string, outputPath string) error {
	if len(clipPaths) == 0 {
		return fmt.Errorf("no clips to concatenate")
	}

	listPath := filepath.Join(filepath.Dir(outputPath), "concat_list.txt")
	var list []byte
	for _, p := range clipPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve clip path %s: %w", p, err)
		}
		list = append(list, fmt.Sprintf("file '%s'\n", abs)...)
	}
	if err := os.WriteFile(listPath, list, 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	return a.run(ctx, "concat", buildConcatArgs(listPath, outputPath))
}

// Mux lays the audio track under the video into outputPath.
func (a *Assembler) Mux(ctx context.Context, videoPath, audioPath, outputPath string) error {
	return a.run(ctx, "mux", buildMuxArgs(videoPath, audioPath, outputPath))
}

func (a *Assembler) run(ctx context.Context, op string, args []string) error {
	log.Debug().Str("op", op).Strs("args", args).Msg("Running ffmpeg")

	start := time.Now()
	cmd := exec.CommandContext(ctx, a.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Str("op", op).Str("ffmpeg_output", string(output)).
			Dur("duration", elapsed).Msg("ffmpeg failed")
		return fmt.Errorf("ffmpeg %s failed: %w\noutput: %s", op, err, output)
	}

	log.Info().Str("op", op).Dur("duration", elapsed).Msg("ffmpeg finished")
	return nil
}
