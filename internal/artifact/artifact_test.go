package artifact

import (
	"context"
	"errors"
	"testing"

	"github.com/akakura-hackathon/LocAIver/internal/store"
)

func seed(t *testing.T, keys ...string) store.Store {
	t.Helper()
	s := store.NewMemStore()
	for _, key := range keys {
		if err := s.Write(context.Background(), key, []byte("x"), "application/octet-stream"); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestLatestVersion(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want int
	}{
		{
			name: "only original",
			keys: []string{"p/json/scene_akakura_ja.json"},
			want: 0,
		},
		{
			name: "gap in versions keeps max",
			keys: []string{
				"p/json/scene_akakura_ja.json",
				"p/json/scene_akakura_ja_v1.json",
				"p/json/scene_akakura_ja_v3.json",
			},
			want: 3,
		},
		{
			name: "suffixed without original",
			keys: []string{"p/json/scene_akakura_ja_v2.json"},
			want: 2,
		},
		{
			name: "other documents ignored",
			keys: []string{
				"p/json/scene_akakura_ja.json",
				"p/json/scene_akakura_en_v5.json",
				"p/json/story_script_akakura_ja.json",
				"p/json/scene_akakura_ja_v1x.json",
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seed(t, tt.keys...)
			got, err := LatestVersion(context.Background(), s, "p/json/", "scene_akakura_ja", ".json")
			if err != nil {
				t.Fatalf("LatestVersion: %v", err)
			}
			if got != tt.want {
				t.Errorf("version = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLatestVersionNotFound(t *testing.T) {
	s := seed(t, "p/json/story_script_akakura_ja.json")
	_, err := LatestVersion(context.Background(), s, "p/json/", "scene_akakura_ja", ".json")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLatestSceneImagesPerSlot(t *testing.T) {
	s := seed(t,
		"p/images/akakuraPR_1.png",
		"p/images/akakuraPR_2.png",
		"p/images/akakuraPR_v1_2.png",
		"p/images/akakuraPR_v3_1.png",
		"p/images/美咲.png",
	)

	got, err := LatestSceneImages(context.Background(), s, "p/images/", "akakuraPR")
	if err != nil {
		t.Fatalf("LatestSceneImages: %v", err)
	}

	want := map[int]SceneImage{
		1: {Key: "p/images/akakuraPR_v3_1.png", Version: 3, Slot: 1},
		2: {Key: "p/images/akakuraPR_v1_2.png", Version: 1, Slot: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(got), len(want), got)
	}
	for slot, w := range want {
		if got[slot] != w {
			t.Errorf("slot %d = %+v, want %+v", slot, got[slot], w)
		}
	}
}

func TestLatestSceneImagesEmpty(t *testing.T) {
	s := seed(t, "p/images/美咲.png")
	got, err := LatestSceneImages(context.Background(), s, "p/images/", "akakuraPR")
	if err != nil {
		t.Fatalf("LatestSceneImages: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty map", got)
	}
}
