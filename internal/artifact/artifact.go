// Package artifact resolves the latest version of mutable documents and
// images in a project folder.
//
// Revisions never overwrite: each edit writes a new object with a _vN suffix
// and the reader picks the highest suffix from a single List snapshot. The
// unsuffixed original counts as version 0. Scene images resolve per slot,
// because a revision regenerates only the scenes it touched.
package artifact

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/akakura-hackathon/LocAIver/internal/store"
)

// versionRe captures the numeric suffix of a versioned filename stem,
// e.g. "scene_akakura_ja_v3".
var versionRe = regexp.MustCompile(`_v(\d+)$`)

// slotRe captures optional version and mandatory slot of a scene image name,
// e.g. "akakuraPR_v2_3.png" or "akakuraPR_1.png".
var slotRe = regexp.MustCompile(`^(?:_v(\d+))?_(\d+)\.png$`)

// LatestVersion lists prefix and returns the highest version of the document
// whose unsuffixed filename is base+ext (ext includes the dot). Version 0
// means only the original exists. store.ErrNotFound is returned when no
// version exists at all.
func LatestVersion(ctx context.Context, s store.Store, prefix, base, ext string) (int, error) {
	keys, err := s.List(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", prefix, err)
	}

	latest := -1
	for _, key := range keys {
		name := path.Base(key)
		if !strings.HasSuffix(name, ext) {
			continue
		}
		stem := strings.TrimSuffix(name, ext)
		if stem == base {
			if latest < 0 {
				latest = 0
			}
			continue
		}
		rest, ok := strings.CutPrefix(stem, base)
		if !ok {
			continue
		}
		m := versionRe.FindStringSubmatch(rest)
		if m == nil || "_v"+m[1] != rest {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if v > latest {
			latest = v
		}
	}

	if latest < 0 {
		return 0, fmt.Errorf("%s%s%s: %w", prefix, base, ext, store.ErrNotFound)
	}
	return latest, nil
}

// SceneImage locates one slot's image across versions.
type SceneImage struct {
	Key     string
	Version int
	Slot    int
}

// LatestSceneImages resolves, per slot, the highest-versioned scene image
// under prefix whose stem starts with base (e.g. "akakuraPR"). Slots with no
// image are absent from the map; an empty map is not an error, the caller
// decides whether missing slots are fatal.
func LatestSceneImages(ctx context.Context, s store.Store, prefix, base string) (map[int]SceneImage, error) {
	keys, err := s.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	best := make(map[int]SceneImage)
	for _, key := range keys {
		name := path.Base(key)
		rest, ok := strings.CutPrefix(name, base)
		if !ok {
			continue
		}
		m := slotRe.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		version := 0
		if m[1] != "" {
			version, err = strconv.Atoi(m[1])
			if err != nil {
				continue
			}
		}
		slot, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if cur, ok := best[slot]; !ok || version > cur.Version {
			best[slot] = SceneImage{Key: key, Version: version, Slot: slot}
		}
	}
	return best, nil
}
