package story

import (
	"encoding/json"
	"testing"
)

func TestFlexIntForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"number", `{"seconds": 24}`, 24},
		{"string", `{"seconds": "24"}`, 24},
		{"null", `{"seconds": null}`, 0},
		{"absent", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in UserInput
			if err := json.Unmarshal([]byte(tt.in), &in); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if int(in.Seconds) != tt.want {
				t.Errorf("seconds = %d, want %d", in.Seconds, tt.want)
			}
		})
	}
}

func TestAspectRatio(t *testing.T) {
	tests := []struct {
		in   Aspect
		want string
	}{
		{AspectPortrait, "9:16"},
		{AspectLandscape, "16:9"},
		{Aspect(""), "1:1"},
		{Aspect("square"), "1:1"},
	}
	for _, tt := range tests {
		if got := tt.in.Ratio(); got != tt.want {
			t.Errorf("Ratio(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClipSeconds(t *testing.T) {
	tests := []struct{ total, want int }{
		{16, 4},
		{24, 6},
		{32, 8},
		{0, 8},
	}
	for _, tt := range tests {
		if got := ClipSeconds(tt.total); got != tt.want {
			t.Errorf("ClipSeconds(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestProgressionHasCharacter(t *testing.T) {
	if !ProgressionCharacter.HasCharacter() {
		t.Error("character progression should carry a character")
	}
	if ProgressionNarration.HasCharacter() {
		t.Error("narration progression should not carry a character")
	}
	if !Progression("").HasCharacter() {
		t.Error("missing progression should default to the character flow")
	}
}

func TestSceneSetValidate(t *testing.T) {
	valid := SceneSet{Scenes: []Scene{
		{SceneID: 1}, {SceneID: 2}, {SceneID: 3}, {SceneID: 4},
	}}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid set: %v", err)
	}

	short := SceneSet{Scenes: []Scene{{SceneID: 1}}}
	if err := short.Validate(); err == nil {
		t.Error("short set should fail validation")
	}

	shuffled := SceneSet{Scenes: []Scene{
		{SceneID: 2}, {SceneID: 1}, {SceneID: 3}, {SceneID: 4},
	}}
	if err := shuffled.Validate(); err == nil {
		t.Error("out-of-order ids should fail validation")
	}
}

func TestRevisionRequestFlaggedIDs(t *testing.T) {
	raw := `{
		"project_folder": "Project-003/",
		"counter": "2",
		"scenes": [
			{"scene_id": 1, "fix": "N", "input_fix": ""},
			{"scene_id": 2, "fix": "Y", "input_fix": "桜を増やす"},
			{"scene_id": 3, "fix": "N", "input_fix": ""},
			{"scene_id": 4, "fix": "Y", "input_fix": "夕焼けに"}
		]
	}`
	var req RevisionRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if int(req.Counter) != 2 {
		t.Errorf("counter = %d, want 2", req.Counter)
	}
	ids := req.FlaggedIDs()
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 4 {
		t.Errorf("flagged ids = %v, want [2 4]", ids)
	}
}

func TestRevisionRequestNormalize(t *testing.T) {
	raw := `{
		"project_folder": "Project-003/",
		"counter": 1,
		"scenes": [
			{"fix": "N", "input_fix": ""},
			{"fix": "Y", "input_fix": "桜を増やす"},
			{"fix": "N", "input_fix": ""},
			{"fix": "N", "input_fix": ""}
		]
	}`
	var req RevisionRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	req.Normalize()
	for i, sc := range req.Scenes {
		if sc.SceneID != i+1 {
			t.Errorf("scene at index %d normalized to id %d, want %d", i, sc.SceneID, i+1)
		}
	}
	if ids := req.FlaggedIDs(); len(ids) != 1 || ids[0] != 2 {
		t.Errorf("flagged ids = %v, want [2]", ids)
	}

	// Explicit ids are kept as sent.
	explicit := RevisionRequest{Scenes: []SceneRevision{{SceneID: 4, Fix: "Y"}}}
	explicit.Normalize()
	if explicit.Scenes[0].SceneID != 4 {
		t.Errorf("explicit id rewritten to %d", explicit.Scenes[0].SceneID)
	}
}

func TestChatMessageBody(t *testing.T) {
	if got := (ChatMessage{Text: "a", Content: "b"}).Body(); got != "a" {
		t.Errorf("text wins: got %q", got)
	}
	if got := (ChatMessage{Content: "b"}).Body(); got != "b" {
		t.Errorf("content fallback: got %q", got)
	}
}
