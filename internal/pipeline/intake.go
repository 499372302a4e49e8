package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/akakura-hackathon/LocAIver/internal/gen"
	"github.com/akakura-hackathon/LocAIver/internal/jsonutil"
	"github.com/akakura-hackathon/LocAIver/internal/project"
	"github.com/akakura-hackathon/LocAIver/internal/prompt"
	"github.com/akakura-hackathon/LocAIver/internal/store"
	"github.com/akakura-hackathon/LocAIver/internal/story"
)

// StartResult is the intake outcome: the allocated project folder and the
// interviewer's opening question.
type StartResult struct {
	Reply         string `json:"reply"`
	ProjectFolder string `json:"project_folder"`
}

// StartProject allocates a project folder, persists the intake form in both
// languages, and opens the interview. The form is stored exactly as posted;
// later stages parse only the fields they need.
func (p *Pipeline) StartProject(ctx context.Context, form json.RawMessage) (*StartResult, error) {
	var input story.UserInput
	if err := json.Unmarshal(form, &input); err != nil {
		return nil, fmt.Errorf("parse intake form: %w", err)
	}

	folder, err := project.NextFolder(ctx, p.store)
	if err != nil {
		return nil, err
	}
	paths := project.NewPaths(folder, p.docTag)

	if err := p.store.Write(ctx, paths.UserInput(project.LangJA), indent(form), "application/json"); err != nil {
		return nil, fmt.Errorf("store intake form: %w", err)
	}
	if err := p.translate(ctx, form, paths.UserInput(project.LangEN)); err != nil {
		return nil, err
	}

	reply, err := p.text.GenerateText(ctx, prompt.FirstQuestion(input))
	if err != nil {
		return nil, fmt.Errorf("open interview: %w", err)
	}

	log.Info().Str("folder", folder).Str("highlight", input.Highlight).
		Int("seconds", int(input.Seconds)).Msg("Project started")
	return &StartResult{Reply: reply, ProjectFolder: folder}, nil
}

// Chat runs one interview turn over the caller-supplied history. The
// interview itself is stateless on the server; the frontend carries the
// transcript.
func (p *Pipeline) Chat(ctx context.Context, history []story.ChatMessage, message string) (string, error) {
	reply, err := p.text.GenerateTextWithSystem(ctx, prompt.InterviewSystem, prompt.Turn(history, message))
	if err != nil {
		return "", fmt.Errorf("interview turn: %w", err)
	}
	return reply, nil
}

// FinishChat closes the interview and runs the generation stages through
// images: story extraction, optional character, scene split, and one image
// per scene. It returns the scene document with a signed preview URL per
// scene.
func (p *Pipeline) FinishChat(ctx context.Context, folder string, history []story.ChatMessage) (json.RawMessage, error) {
	paths := project.NewPaths(folder, p.docTag)

	var input story.UserInput
	if err := store.ReadJSON(ctx, p.store, paths.UserInput(project.LangJA), &input); err != nil {
		return nil, fmt.Errorf("load intake form: %w", err)
	}
	withCharacter := input.Progression.HasCharacter()

	// Story extraction.
	storyDoc, err := p.generateJSON(ctx, "story-extract", prompt.StoryExtraction(history, withCharacter))
	if err != nil {
		return nil, fmt.Errorf("extract story: %w", err)
	}
	st, err := jsonutil.Unmarshal[story.Story](string(storyDoc))
	if err != nil {
		return nil, fmt.Errorf("decode story document: %w", err)
	}
	if err := p.store.Write(ctx, paths.Story(project.LangJA), indent(storyDoc), "application/json"); err != nil {
		return nil, fmt.Errorf("store story: %w", err)
	}
	if err := p.translate(ctx, storyDoc, paths.Story(project.LangEN)); err != nil {
		return nil, err
	}

	// Character sheet, only for character-driven projects.
	if withCharacter {
		charDoc, err := p.generateJSON(ctx, "character-extract", prompt.CharacterExtraction(string(storyDoc)))
		if err != nil {
			return nil, fmt.Errorf("extract character: %w", err)
		}
		if err := p.store.Write(ctx, paths.Character(project.LangJA), indent(charDoc), "application/json"); err != nil {
			return nil, fmt.Errorf("store character: %w", err)
		}
		if err := p.translate(ctx, charDoc, paths.Character(project.LangEN)); err != nil {
			return nil, err
		}
	}

	// Scene split.
	sceneDoc, err := p.generateJSON(ctx, "scene-split", prompt.SceneSplit(st.Story))
	if err != nil {
		return nil, fmt.Errorf("split scenes: %w", err)
	}
	set, err := jsonutil.Unmarshal[story.SceneSet](string(sceneDoc))
	if err != nil {
		return nil, fmt.Errorf("decode scene document: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("scene document: %w", err)
	}
	if err := p.store.Write(ctx, paths.Scene(project.LangJA, 0), indent(sceneDoc), "application/json"); err != nil {
		return nil, fmt.Errorf("store scenes: %w", err)
	}
	if err := p.translate(ctx, sceneDoc, paths.Scene(project.LangEN, 0)); err != nil {
		return nil, err
	}

	// Images for every scene, version 0.
	if err := p.generateImages(ctx, paths, input, 0, nil); err != nil {
		return nil, err
	}

	log.Info().Str("folder", folder).Bool("character", withCharacter).
		Msg("Storyboard generated")
	return p.sceneViewJA(ctx, paths, 0)
}

// generateImages renders scene images at the given version. only limits the
// work to the named scene ids; nil means every scene. For character-driven
// projects the portrait is generated first (version 0 only) and every scene
// image is conditioned on it.
func (p *Pipeline) generateImages(ctx context.Context, paths project.Paths, input story.UserInput, version int, only []int) error {
	var enScenes story.SceneSet
	if err := store.ReadJSON(ctx, p.store, paths.Scene(project.LangEN, version), &enScenes); err != nil {
		return fmt.Errorf("load translated scenes: %w", err)
	}
	var enStory story.Story
	if err := store.ReadJSON(ctx, p.store, paths.Story(project.LangEN), &enStory); err != nil {
		return fmt.Errorf("load translated story: %w", err)
	}

	var portrait []byte
	if input.Progression.HasCharacter() {
		var ch story.Character
		if err := store.ReadJSON(ctx, p.store, paths.Character(project.LangEN), &ch); err != nil {
			return fmt.Errorf("load character sheet: %w", err)
		}
		portraitKey := paths.Portrait(ch.Name)

		if version == 0 {
			err := p.exec.Do(ctx, gen.KindImage, "portrait", prompt.Portrait(ch), func(ctx context.Context, current string) error {
				data, err := p.image.GeneratePortrait(ctx, current, prompt.NegativePortrait, input.Format.Ratio())
				if err != nil {
					return err
				}
				return p.store.Write(ctx, portraitKey, data, "image/png")
			})
			if err != nil {
				return fmt.Errorf("generate portrait: %w", err)
			}
		}

		var err error
		portrait, err = p.store.Read(ctx, portraitKey)
		if err != nil {
			return fmt.Errorf("load portrait: %w", err)
		}
	}

	wanted := func(id int) bool {
		if only == nil {
			return true
		}
		for _, w := range only {
			if w == id {
				return true
			}
		}
		return false
	}

	prompts := prompt.SceneImages(enScenes, enStory.Style, input.Format)
	for i, sc := range enScenes.Scenes {
		if !wanted(sc.SceneID) {
			continue
		}
		key := paths.SceneImage(version, sc.SceneID)

		err := p.exec.Do(ctx, gen.KindImage, "scene-image", prompts[i], func(ctx context.Context, current string) error {
			var data []byte
			var err error
			if portrait != nil {
				data, err = p.image.GenerateSceneImage(ctx, current, portrait)
			} else {
				data, err = p.image.GeneratePortrait(ctx, current, prompt.NegativeSceneImage, input.Format.Ratio())
			}
			if err != nil {
				return err
			}
			return p.store.Write(ctx, key, data, "image/png")
		})
		if err != nil {
			return fmt.Errorf("generate image for scene %d: %w", sc.SceneID, err)
		}
	}
	return nil
}

// sceneViewJA loads the Japanese scene document at version and annotates
// each scene with a signed URL for its latest image.
func (p *Pipeline) sceneViewJA(ctx context.Context, paths project.Paths, version int) (json.RawMessage, error) {
	data, err := p.store.Read(ctx, paths.Scene(project.LangJA, version))
	if err != nil {
		return nil, fmt.Errorf("load scene document: %w", err)
	}
	return p.attachImageURLs(ctx, paths, data)
}
