package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneInfo describes one selectable scene for CLIs and the web API
type SceneInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`               // "builtin" or "file"
	FilePath    string `json:"filePath,omitempty"` // file scenes only
}

// ScenesResponse is the payload shape of /api/scenes
type ScenesResponse struct {
	Scenes []SceneInfo `json:"scenes"`
}

// builtins maps scene IDs to their constructors. Order of builtinIDs is the
// order scenes are listed in.
var builtins = map[string]func() *Scene{
	"default":     NewDefaultScene,
	"mirror-pit":  NewMirrorPitScene,
	"sphere-grid": NewSphereGridScene,
}

var builtinIDs = []string{"default", "mirror-pit", "sphere-grid"}

var builtinDescriptions = map[string]string{
	"default":     "Ground sphere with three colored spheres",
	"mirror-pit":  "Two facing spheres that bounce every ray to the budget",
	"sphere-grid": "Grid of spheres colored by hue and chroma",
}

// BuiltinScenes lists the compiled-in scenes
func BuiltinScenes() []SceneInfo {
	infos := make([]SceneInfo, 0, len(builtinIDs))
	for _, id := range builtinIDs {
		infos = append(infos, SceneInfo{
			ID:          id,
			Name:        titleCase(id),
			Description: builtinDescriptions[id],
			Type:        "builtin",
		})
	}
	return infos
}

// ListScenes returns the built-in scenes plus any JSON scene files found in
// a scenes directory next to the working directory. A missing directory is
// not an error; the built-ins are always available.
func ListScenes() (ScenesResponse, error) {
	response := ScenesResponse{Scenes: BuiltinScenes()}

	fileScenes, err := listFileScenes()
	if err != nil {
		return response, err
	}
	response.Scenes = append(response.Scenes, fileScenes...)

	return response, nil
}

// Resolve turns a -scene flag value into a Scene: a built-in ID, or a path
// to a JSON scene file.
func Resolve(nameOrPath string) (*Scene, error) {
	if construct, ok := builtins[nameOrPath]; ok {
		return construct(), nil
	}

	if looksLikePath(nameOrPath) {
		return LoadScene(nameOrPath)
	}

	return nil, fmt.Errorf("unknown scene %q (built-ins: %s)",
		nameOrPath, strings.Join(builtinIDs, ", "))
}

func looksLikePath(s string) bool {
	if strings.HasSuffix(s, ".json") || strings.ContainsRune(s, os.PathSeparator) {
		return true
	}
	_, err := os.Stat(s)
	return err == nil
}

func listFileScenes() ([]SceneInfo, error) {
	var scenesDir string
	for _, path := range []string{"scenes", "../scenes"} {
		if _, err := os.Stat(path); err == nil {
			scenesDir = path
			break
		}
	}
	if scenesDir == "" {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(scenesDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scanning scenes directory: %w", err)
	}

	var infos []SceneInfo
	for _, path := range files {
		s, err := LoadScene(path)
		if err != nil {
			// Broken files are skipped so one typo does not hide the rest
			continue
		}

		name := s.Name
		if name == "" {
			name = titleCase(strings.TrimSuffix(filepath.Base(path), ".json"))
		}
		infos = append(infos, SceneInfo{
			ID:       path,
			Name:     name,
			Type:     "file",
			FilePath: path,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// titleCase converts an ID-style string to a display name,
// e.g. "mirror-pit" -> "Mirror Pit"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
