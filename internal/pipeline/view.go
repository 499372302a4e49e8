package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akakura-hackathon/LocAIver/internal/artifact"
	"github.com/akakura-hackathon/LocAIver/internal/project"
)

// attachImageURLs annotates every scene in sceneDoc with a signed "url"
// field pointing at that slot's latest image. Scenes without an image keep
// no url rather than failing the whole view.
func (p *Pipeline) attachImageURLs(ctx context.Context, paths project.Paths, sceneDoc []byte) (json.RawMessage, error) {
	images, err := artifact.LatestSceneImages(ctx, p.store, paths.ImagesPrefix(), paths.SceneImageBase(0))
	if err != nil {
		return nil, fmt.Errorf("resolve scene images: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(sceneDoc, &doc); err != nil {
		return nil, fmt.Errorf("decode scene document: %w", err)
	}
	scenes, _ := doc["scenes"].([]any)
	for _, raw := range scenes {
		sc, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, ok := sc["scene_id"].(float64)
		if !ok {
			continue
		}
		img, ok := images[int(id)]
		if !ok {
			continue
		}
		url, err := p.store.Sign(ctx, img.Key, p.signTTL)
		if err != nil {
			return nil, fmt.Errorf("sign image %s: %w", img.Key, err)
		}
		sc["url"] = url
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode scene view: %w", err)
	}
	return out, nil
}
