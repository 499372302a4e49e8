// Package project owns the physical layout of a project namespace in the
// artifact store: folder numbering, subarea prefixes, and every artifact
// path the pipeline reads or writes.
//
// A project is a prefix of the form "Project-007/" with four subareas
// (json/, images/, videos/, result/). Folder numbers are derived by scanning
// existing prefixes and taking max+1, never from an in-memory counter, so
// numbering survives restarts and numbers are never reused even when a
// project is abandoned.
package project

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/akakura-hackathon/LocAIver/internal/store"
)

// FolderPrefix is the namespace prefix shared by all projects.
const FolderPrefix = "Project-"

// Subarea names inside a project folder.
const (
	JSONDir   = "json/"
	ImagesDir = "images/"
	VideosDir = "videos/"
	ResultDir = "result/"
)

// folderRe matches the zero-padded project prefix, e.g. "Project-012/...".
var folderRe = regexp.MustCompile(`^Project-(\d{3})/`)

// NextFolder scans existing project prefixes, allocates the next number, and
// creates the folder with its subarea markers. The returned folder ends with
// a slash and is the key prefix for every artifact of the new project.
func NextFolder(ctx context.Context, s store.Store) (string, error) {
	keys, err := s.List(ctx, FolderPrefix)
	if err != nil {
		return "", fmt.Errorf("list project folders: %w", err)
	}

	max := 0
	for _, key := range keys {
		m := folderRe.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}

	folder := fmt.Sprintf("%s%03d/", FolderPrefix, max+1)

	// Zero-byte markers make the pseudo-folders visible in bucket browsers.
	for _, sub := range []string{"", JSONDir, ImagesDir, VideosDir, ResultDir} {
		if err := s.Write(ctx, folder+sub, nil, "application/octet-stream"); err != nil {
			return "", fmt.Errorf("create folder %s%s: %w", folder, sub, err)
		}
	}

	log.Info().Str("folder", folder).Msg("Project folder created")
	return folder, nil
}

// Paths builds artifact keys for one project. Tag is the label embedded in
// document filenames (config.DocTag).
type Paths struct {
	Folder string
	Tag    string
}

// NewPaths returns a Paths rooted at folder, normalising a missing trailing
// slash.
func NewPaths(folder, tag string) Paths {
	if folder != "" && !strings.HasSuffix(folder, "/") {
		folder += "/"
	}
	return Paths{Folder: folder, Tag: tag}
}

// Lang identifies a language variant of a JSON document.
type Lang string

const (
	LangJA Lang = "ja"
	LangEN Lang = "en"
)

func (p Paths) doc(name string, lang Lang) string {
	return fmt.Sprintf("%s%s%s_%s_%s.json", p.Folder, JSONDir, name, p.Tag, lang)
}

// UserInput returns the user-input document key for lang.
func (p Paths) UserInput(lang Lang) string { return p.doc("user_input", lang) }

// Story returns the story-script document key for lang.
func (p Paths) Story(lang Lang) string { return p.doc("story_script", lang) }

// Character returns the character document key for lang.
func (p Paths) Character(lang Lang) string { return p.doc("character", lang) }

// SceneBase returns the unsuffixed scene document filename for lang, without
// directory or extension — the base the version model parses suffixes
// against.
func (p Paths) SceneBase(lang Lang) string {
	return fmt.Sprintf("scene_%s_%s", p.Tag, lang)
}

// Scene returns the scene document key for lang at version. Version 0 is the
// unsuffixed original; version N carries a _vN suffix.
func (p Paths) Scene(lang Lang, version int) string {
	name := p.SceneBase(lang)
	if version > 0 {
		name = fmt.Sprintf("%s_v%d", name, version)
	}
	return p.Folder + JSONDir + name + ".json"
}

// JSONPrefix returns the json/ subarea prefix for listing.
func (p Paths) JSONPrefix() string { return p.Folder + JSONDir }

// ImagesPrefix returns the images/ subarea prefix for listing.
func (p Paths) ImagesPrefix() string { return p.Folder + ImagesDir }

// SceneImageBase returns the scene-image filename stem at version, without
// the slot index: "<tag>PR" for the original, "<tag>PR_vN" for revisions.
func (p Paths) SceneImageBase(version int) string {
	base := p.Tag + "PR"
	if version > 0 {
		base = fmt.Sprintf("%s_v%d", base, version)
	}
	return base
}

// SceneImage returns the image key for one scene slot at version.
func (p Paths) SceneImage(version, slot int) string {
	return fmt.Sprintf("%s%s%s_%d.png", p.Folder, ImagesDir, p.SceneImageBase(version), slot)
}

// Portrait returns the character portrait key. The character's name keys the
// file; exactly one character exists per project.
func (p Paths) Portrait(name string) string {
	return p.Folder + ImagesDir + name + ".png"
}

// Video returns the per-scene clip key.
func (p Paths) Video(slot int) string {
	return fmt.Sprintf("%s%s%d.mp4", p.Folder, VideosDir, slot)
}

// Silent returns the no-audio concatenation key.
func (p Paths) Silent() string { return p.Folder + ResultDir + "no_bgm.mp4" }

// BGM returns the background score key.
func (p Paths) BGM() string { return p.Folder + ResultDir + "bgm.wav" }

// Result returns the final muxed video key.
func (p Paths) Result() string { return p.Folder + ResultDir + "result.mp4" }
