package prompt

import (
	"strings"
	"testing"

	"github.com/akakura-hackathon/LocAIver/internal/story"
)

func TestTurnWindowAndLabels(t *testing.T) {
	var history []story.ChatMessage
	for i := 0; i < 12; i++ {
		history = append(history,
			story.ChatMessage{Role: "user", Text: "u" + string(rune('a'+i))},
			story.ChatMessage{Role: "assistant", Text: "a" + string(rune('a'+i))},
		)
	}

	got := Turn(history, "最新の発話")

	if strings.Contains(got, "ua") {
		t.Error("oldest turns should be dropped from the window")
	}
	if !strings.Contains(got, "User: 最新の発話") {
		t.Error("latest user message should be restated last")
	}
	if !strings.Contains(got, "Assistant: al") {
		t.Error("recent assistant turns should survive the window")
	}
	if !strings.Contains(got, "【会話履歴（古い→新しい）】") {
		t.Error("history header missing")
	}
}

func TestTurnEmptyHistory(t *testing.T) {
	got := Turn(nil, "")
	if !strings.Contains(got, "初回の質問から開始") {
		t.Errorf("empty history should ask for the opening question, got %q", got)
	}
}

func TestTurnBotRoleReadsAsAssistant(t *testing.T) {
	got := Turn([]story.ChatMessage{{Role: "bot", Content: "ようこそ"}}, "")
	if !strings.Contains(got, "Assistant: ようこそ") {
		t.Errorf("non-user roles should be labelled Assistant, got %q", got)
	}
}

func TestStoryExtractionNarrationForbidsCharacters(t *testing.T) {
	history := []story.ChatMessage{{Role: "user", Text: "温泉街の映像にしたい"}}

	with := StoryExtraction(history, true)
	without := StoryExtraction(history, false)

	if strings.Contains(with, "登場人物を登場させてはいけない") {
		t.Error("character mode must not forbid characters")
	}
	if !strings.Contains(without, "登場人物を登場させてはいけない") {
		t.Error("narration mode must forbid characters")
	}
	for _, p := range []string{with, without} {
		if !strings.Contains(p, `"quality_modifiers"`) {
			t.Error("output schema missing from extraction prompt")
		}
		if !strings.Contains(p, "User: 温泉街の映像にしたい") {
			t.Error("transcript missing from extraction prompt")
		}
	}
}

func TestSceneImagePrompt(t *testing.T) {
	sc := story.Scene{
		SceneID:   2,
		Depiction: "A fisherman mends a net at dawn",
		Composition: story.Composition{
			CameraAngle: "low angle",
			View:        "a wide shot",
			FocalLength: "35",
			Lighting:    "golden hour",
			Focus:       "the net",
		},
		OtherInformation: "sea mist in the background",
	}

	got := SceneImage(sc, "documentary", story.AspectPortrait)

	for _, want := range []string{
		"A fisherman mends a net at dawn",
		"a wide shot from a low angle",
		"golden hour",
		"35 mm lens",
		"documentary",
		"9:16 format",
		"under 21 years old",
		"sea mist in the background",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestClipPrompt(t *testing.T) {
	sc := story.Scene{
		SceneID:   3,
		Depiction: "Lanterns drift down the river.",
		Composition: story.Composition{
			CameraAngle: "overhead",
			View:        "aerial view",
			FocalLength: "50mm",
			Lighting:    "night",
			Focus:       "lanterns",
		},
	}
	got := Clip(sc)
	if !strings.HasPrefix(got, "Scene 3: Lanterns drift down the river.") {
		t.Errorf("clip prompt should lead with the scene id and depiction: %q", got)
	}
	if !strings.Contains(got, "shot with 50mm lens") {
		t.Errorf("clip prompt missing lens: %q", got)
	}
}

func TestPortraitPrompt(t *testing.T) {
	ch := story.Character{
		Name: "Misaki", Sex: "female", Age: 28,
		Description: "a local guide", Personality: "warm and curious",
		VisualDesign: story.VisualDesign{
			Height: "160cm", Build: "slim", HairStyle: "short black",
			EyeColor: "brown eyes", ClothingStyle: "casual jacket",
		},
		KeyItem: "an old film camera", Style: "anime", Composition: "full body",
	}
	got := Portrait(ch)
	for _, want := range []string{
		"An anime full body shot of a 28 female named Misaki",
		"warm and curious",
		"160cm with a slim build",
		"casual jacket and carrying an old film camera",
		"one single coherent scene",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("portrait prompt missing %q:\n%s", want, got)
		}
	}
}

func TestSceneRevisionTargetsScene(t *testing.T) {
	got := SceneRevision(4, `{"scenes": []}`, "桜を追加")
	if !strings.Contains(got, "scene_id が 4 のシーン") {
		t.Errorf("revision prompt should name the target scene: %q", got)
	}
	if !strings.Contains(got, "桜を追加") {
		t.Error("revision note missing")
	}
	if !strings.Contains(got, "入力JSON全体を返してください") {
		t.Error("whole-document instruction missing")
	}
}
