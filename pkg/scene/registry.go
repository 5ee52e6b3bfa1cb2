package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrUnknownScene is returned when a scene name matches no built-in or scene file
var ErrUnknownScene = errors.New("unknown scene")

const (
	builtinGroup = "Built-in Scenes"
	filePrefix   = "file:"
)

// SceneInfo describes a scene that can be created by ID
type SceneInfo struct {
	ID          string `json:"id"`          // Name passed to Create
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath,omitempty"`
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

type builtin struct {
	info   SceneInfo
	create func(seed int64) *Scene
}

var builtins = []builtin{
	{
		info:   SceneInfo{ID: "default", DisplayName: "Random Spheres", Description: "Grid of random diffuse, metal and glass spheres around three large ones"},
		create: NewDefaultScene,
	},
	{
		info:   SceneInfo{ID: "three-spheres", DisplayName: "Three Spheres", Description: "Diffuse, mirror and fuzzy gold spheres with solid and hollow glass"},
		create: func(int64) *Scene { return NewThreeSpheresScene() },
	},
	{
		info:   SceneInfo{ID: "sphere-grid", DisplayName: "Sphere Grid", Description: "20x20 grid of rainbow-colored metallic spheres"},
		create: func(int64) *Scene { return NewSphereGridScene(20) },
	},
	{
		info:   SceneInfo{ID: "single-sphere", DisplayName: "Single Sphere", Description: "White diffuse unit sphere under the sky gradient"},
		create: func(int64) *Scene { return NewSingleSphereScene() },
	},
}

// SceneDirs lists the directories searched for YAML scene files, in order
var SceneDirs = []string{"scenes", "../scenes"}

// Names returns the IDs of the built-in scenes
func Names() []string {
	names := make([]string, len(builtins))
	for i, b := range builtins {
		names[i] = b.info.ID
	}
	return names
}

// Create builds the named scene. Built-in names are listed by Names; an ID of
// the form "file:<stem>" loads <stem>.yaml from the first of SceneDirs that has it.
// seed only affects scenes with randomized layouts.
func Create(name string, seed int64) (*Scene, error) {
	for _, b := range builtins {
		if b.info.ID == name {
			return b.create(seed), nil
		}
	}

	if stem, ok := strings.CutPrefix(name, filePrefix); ok && stem != "" && filepath.Base(stem) == stem {
		for _, dir := range SceneDirs {
			path := filepath.Join(dir, stem+".yaml")
			if _, err := os.Stat(path); err == nil {
				return Load(path)
			}
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
}

// ListSceneFiles scans the first existing scene directory for YAML scene files.
// Files that fail to parse are logged and skipped.
func ListSceneFiles() ([]SceneInfo, error) {
	var scenesDir string
	for _, dir := range SceneDirs {
		if _, err := os.Stat(dir); err == nil {
			scenesDir = dir
			break
		}
	}
	if scenesDir == "" {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(scenesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, path := range files {
		info, err := ReadSceneInfo(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping unreadable scene file")
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// ReadSceneInfo reads the metadata of a scene file without building its world.
// Missing fields fall back to values derived from the file name.
func ReadSceneInfo(path string) (SceneInfo, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	info := SceneInfo{
		ID:          filePrefix + stem,
		DisplayName: titleCase(stem),
		Group:       "Scene Files",
		Type:        "file",
		FilePath:    path,
	}

	f, err := readFile(path)
	if err != nil {
		return info, err
	}
	if f.Name != "" {
		info.DisplayName = f.Name
	}
	if f.Description != "" {
		info.Description = f.Description
	}
	if f.Group != "" {
		info.Group = f.Group
	}
	return info, nil
}

// ListAllScenes returns built-in scenes and scene files, grouped by category
// with the built-in group first
func ListAllScenes() (ScenesResponse, error) {
	var response ScenesResponse

	all := make([]SceneInfo, 0, len(builtins))
	for _, b := range builtins {
		info := b.info
		info.Group = builtinGroup
		info.Type = "builtin"
		all = append(all, info)
	}

	files, err := ListSceneFiles()
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}
	all = append(all, files...)

	groupMap := make(map[string][]SceneInfo)
	var groupNames []string
	for _, info := range all {
		if _, seen := groupMap[info.Group]; !seen && info.Group != builtinGroup {
			groupNames = append(groupNames, info.Group)
		}
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}
	sort.Strings(groupNames)
	groupNames = append([]string{builtinGroup}, groupNames...)

	for _, name := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: name, Scenes: groupMap[name]})
	}
	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "glass-pair" -> "Glass Pair"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
