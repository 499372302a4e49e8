// Package story defines the JSON documents flowing through the pipeline:
// the intake form, the extracted story, the character sheet, the scene set,
// and the revision request. Field names mirror the wire format exactly; the
// frontend and the generation prompts both depend on them.
package story

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Progression selects whether the video features a named character or pure
// narration.
type Progression string

const (
	ProgressionCharacter Progression = "登場人物型"
	ProgressionNarration Progression = "ナレーション型"
)

// HasCharacter reports whether the project carries a character sheet and
// portrait. Unknown values fall back to the character flow, matching how
// intake treats a missing selection.
func (p Progression) HasCharacter() bool {
	return p != ProgressionNarration
}

// Aspect is the intake orientation value.
type Aspect string

const (
	AspectPortrait  Aspect = "縦"
	AspectLandscape Aspect = "横"
)

// Ratio maps the orientation to a generation aspect ratio. The empty value
// squares off, matching scene-image generation for legacy documents.
func (a Aspect) Ratio() string {
	switch a {
	case AspectPortrait:
		return "9:16"
	case AspectLandscape:
		return "16:9"
	default:
		return "1:1"
	}
}

// ClipSeconds maps the total requested duration to the per-scene clip
// length. Four scenes per video.
func ClipSeconds(total int) int {
	switch total {
	case 16:
		return 4
	case 24:
		return 6
	default:
		return 8
	}
}

// FlexInt unmarshals from either a JSON number or a numeric string. Intake
// forms send seconds and counters both ways.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("numeric value %q: %w", s, err)
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// UserInput is the intake form document (user_input_*_ja.json).
type UserInput struct {
	Highlight   string      `json:"highlight"`
	Seconds     FlexInt     `json:"seconds"`
	Format      Aspect      `json:"format"`
	Progression Progression `json:"progression"`
	Region      string      `json:"region,omitempty"`
	Keywords    string      `json:"keywords,omitempty"`
}

// Story is the extracted story script (story_script_*_ja.json).
type Story struct {
	Subject          string `json:"subject"`
	Story            string `json:"story"`
	Style            string `json:"style"`
	QualityModifiers string `json:"quality_modifiers"`
	NegativePrompt   string `json:"negative_prompt"`
}

// VisualDesign describes the character's appearance for image prompts.
type VisualDesign struct {
	Height        string `json:"height"`
	Build         string `json:"build"`
	HairStyle     string `json:"hair_style"`
	EyeColor      string `json:"eye_color"`
	ClothingStyle string `json:"clothing_style"`
}

// Character is the character sheet (character_*_ja.json).
type Character struct {
	Name         string       `json:"name"`
	Sex          string       `json:"sex"`
	Age          FlexInt      `json:"age"`
	Description  string       `json:"description"`
	Personality  string       `json:"personality"`
	VisualDesign VisualDesign `json:"visual_design"`
	KeyItem      string       `json:"key_item"`
	Style        string       `json:"style"`
	Composition  string       `json:"character_composition"`
}

// DialogueLine is one spoken line in a scene.
type DialogueLine struct {
	Character string `json:"character"`
	Line      string `json:"line"`
}

// Composition holds the camera directives of one scene.
type Composition struct {
	CameraAngle string `json:"camera_angle"`
	View        string `json:"view"`
	FocalLength string `json:"focal_length"`
	Lighting    string `json:"lighting"`
	Focus       string `json:"focus"`
}

// Scene is one storyboard entry.
type Scene struct {
	SceneID          int            `json:"scene_id"`
	Depiction        string         `json:"depiction"`
	Composition      Composition    `json:"composition"`
	Dialogue         []DialogueLine `json:"dialogue"`
	OtherInformation string         `json:"other_information"`
}

// SceneCount is the fixed number of scenes per video.
const SceneCount = 4

// SceneSet is the scene document (scene_*_ja.json).
type SceneSet struct {
	Scenes []Scene `json:"scenes"`
}

// Validate checks scene ids form the contiguous run 1..SceneCount. The
// generator is instructed to emit exactly that; anything else means a
// malformed document the pipeline cannot address slots against.
func (s SceneSet) Validate() error {
	if len(s.Scenes) != SceneCount {
		return fmt.Errorf("scene set has %d scenes, want %d", len(s.Scenes), SceneCount)
	}
	for i, sc := range s.Scenes {
		if sc.SceneID != i+1 {
			return fmt.Errorf("scene at index %d has scene_id %d, want %d", i, sc.SceneID, i+1)
		}
	}
	return nil
}

// Fix flag values in a revision request.
const (
	FixYes = "Y"
	FixNo  = "N"
)

// SceneRevision marks one scene of a revision request.
type SceneRevision struct {
	SceneID  int    `json:"scene_id"`
	Fix      string `json:"fix"`
	InputFix string `json:"input_fix"`
}

// Flagged reports whether this scene was marked for rewriting.
func (r SceneRevision) Flagged() bool { return r.Fix == FixYes }

// RevisionRequest is the edit payload: a per-scene fix flag plus the
// caller-supplied revision counter.
type RevisionRequest struct {
	ProjectFolder string          `json:"project_folder"`
	Counter       FlexInt         `json:"counter"`
	Scenes        []SceneRevision `json:"scenes"`
}

// Normalize assigns scene ids by position for requests that omit them. The
// frontend sends one entry per scene in fixed order 1..SceneCount, and may
// leave scene_id out entirely; an absent or zero id means the scene at that
// position.
func (r *RevisionRequest) Normalize() {
	for i := range r.Scenes {
		if r.Scenes[i].SceneID == 0 {
			r.Scenes[i].SceneID = i + 1
		}
	}
}

// FlaggedIDs returns the scene ids marked for rewriting, in request order.
func (r RevisionRequest) FlaggedIDs() []int {
	var ids []int
	for _, sc := range r.Scenes {
		if sc.Flagged() {
			ids = append(ids, sc.SceneID)
		}
	}
	return ids
}

// ChatMessage is one turn of the intake interview. The frontend sends the
// body under either "text" or "content".
type ChatMessage struct {
	Role    string `json:"role"`
	Text    string `json:"text"`
	Content string `json:"content"`
}

// Body returns whichever field carries the message text.
func (m ChatMessage) Body() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Content
}
