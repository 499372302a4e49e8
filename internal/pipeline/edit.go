package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/akakura-hackathon/LocAIver/internal/artifact"
	"github.com/akakura-hackathon/LocAIver/internal/project"
	"github.com/akakura-hackathon/LocAIver/internal/prompt"
	"github.com/akakura-hackathon/LocAIver/internal/store"
	"github.com/akakura-hackathon/LocAIver/internal/story"
)

// ErrStaleCounter reports a revision counter at or below an existing scene
// version. Each edit must claim a fresh version number or it would silently
// overwrite history.
var ErrStaleCounter = errors.New("revision counter is not newer than the latest scene version")

// rawSceneSet mirrors the scene document with opaque scene entries, so
// untouched scenes can be carried into a new version without re-encoding
// them through typed structs.
type rawSceneSet struct {
	Scenes []json.RawMessage `json:"scenes"`
}

// Edit applies a revision request: each flagged scene is rewritten by the
// model against the full document, untouched scenes are copied verbatim
// from the previous version, and images are regenerated only for the flagged
// scenes. Returns the revised scene document with signed image URLs.
func (p *Pipeline) Edit(ctx context.Context, req story.RevisionRequest) (json.RawMessage, error) {
	req.Normalize()
	paths := project.NewPaths(req.ProjectFolder, p.docTag)
	counter := int(req.Counter)

	latest, err := artifact.LatestVersion(ctx, p.store, paths.JSONPrefix(), paths.SceneBase(project.LangJA), ".json")
	if err != nil {
		return nil, fmt.Errorf("resolve latest scene version: %w", err)
	}
	if counter <= latest {
		return nil, fmt.Errorf("counter %d, latest version %d: %w", counter, latest, ErrStaleCounter)
	}

	flagged := req.FlaggedIDs()
	if len(flagged) == 0 {
		return nil, fmt.Errorf("revision request flags no scenes")
	}

	current, err := p.store.Read(ctx, paths.Scene(project.LangJA, latest))
	if err != nil {
		return nil, fmt.Errorf("load scene version %d: %w", latest, err)
	}

	// Rewrite flagged scenes one at a time, each against the document the
	// previous rewrite produced.
	for _, sc := range req.Scenes {
		if !sc.Flagged() {
			continue
		}
		revised, err := p.generateJSON(ctx, "scene-revision",
			prompt.SceneRevision(sc.SceneID, string(current), sc.InputFix))
		if err != nil {
			return nil, fmt.Errorf("revise scene %d: %w", sc.SceneID, err)
		}
		current, err = mergeRevision(current, revised, sc.SceneID)
		if err != nil {
			return nil, fmt.Errorf("merge revision of scene %d: %w", sc.SceneID, err)
		}
	}

	if err := p.store.Write(ctx, paths.Scene(project.LangJA, counter), current, "application/json"); err != nil {
		return nil, fmt.Errorf("store scene version %d: %w", counter, err)
	}
	if err := p.translate(ctx, current, paths.Scene(project.LangEN, counter)); err != nil {
		return nil, err
	}

	var input story.UserInput
	if err := store.ReadJSON(ctx, p.store, paths.UserInput(project.LangJA), &input); err != nil {
		return nil, fmt.Errorf("load intake form: %w", err)
	}
	if err := p.generateImages(ctx, paths, input, counter, flagged); err != nil {
		return nil, err
	}

	log.Info().Str("folder", req.ProjectFolder).Int("version", counter).
		Ints("scenes", flagged).Msg("Revision applied")
	return p.sceneViewJA(ctx, paths, counter)
}

// mergeRevision folds the model's full-document rewrite into the prior
// document, taking only the targeted scene from the rewrite. Every other
// scene keeps the prior version's bytes, so a drifting model cannot touch
// scenes the user did not flag.
func mergeRevision(prior, revised json.RawMessage, sceneID int) (json.RawMessage, error) {
	var before, after rawSceneSet
	if err := json.Unmarshal(prior, &before); err != nil {
		return nil, fmt.Errorf("decode prior document: %w", err)
	}
	if err := json.Unmarshal(revised, &after); err != nil {
		return nil, fmt.Errorf("decode revised document: %w", err)
	}
	if len(after.Scenes) != len(before.Scenes) {
		return nil, fmt.Errorf("rewrite has %d scenes, want %d", len(after.Scenes), len(before.Scenes))
	}

	merged := rawSceneSet{Scenes: make([]json.RawMessage, len(before.Scenes))}
	found := false
	for i, raw := range before.Scenes {
		var probe struct {
			SceneID int `json:"scene_id"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("decode scene at index %d: %w", i, err)
		}
		if probe.SceneID == sceneID {
			merged.Scenes[i] = after.Scenes[i]
			found = true
		} else {
			merged.Scenes[i] = raw
		}
	}
	if !found {
		return nil, fmt.Errorf("scene %d not present in document", sceneID)
	}

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode merged document: %w", err)
	}
	return out, nil
}
