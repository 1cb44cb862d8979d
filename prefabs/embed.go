package prefabs

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

//go:embed *.yaml
var PrefabsFS embed.FS

// Loader resolves prefab and script names. Files under Dir win over the
// embedded copies so edits show up without a rebuild. An empty Dir reads
// only the embedded files.
type Loader struct {
	Dir string
}

// DefaultLoader overrides from ./prefabs, which is where the watcher looks.
var DefaultLoader = Loader{Dir: "prefabs"}

func Load(name string) ([]byte, error) {
	return DefaultLoader.Load(name)
}

func LoadScript(name string) ([]byte, error) {
	return DefaultLoader.LoadScript(name)
}

func (l Loader) Load(name string) ([]byte, error) {
	return l.read(PrefabsFS, cleanPrefabPath(name))
}

func (l Loader) LoadScript(name string) ([]byte, error) {
	return l.read(ScriptsFS, cleanScriptPath(name))
}

func (l Loader) read(embedded embed.FS, clean string) ([]byte, error) {
	if clean == "" || strings.HasPrefix(clean, "../") {
		return nil, &fs.PathError{Op: "open", Path: clean, Err: fs.ErrInvalid}
	}
	if l.Dir != "" {
		data, err := os.ReadFile(filepath.Join(l.Dir, filepath.FromSlash(clean)))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return embedded.ReadFile(clean)
}

func cleanPrefabPath(p string) string {
	if p == "" {
		return ""
	}
	s := path.Clean(filepath.ToSlash(p))
	return strings.TrimPrefix(s, "prefabs/")
}

func cleanScriptPath(p string) string {
	if p == "" {
		return ""
	}
	s := path.Clean(filepath.ToSlash(p))
	s = strings.TrimPrefix(s, "prefabs/")
	s = strings.TrimPrefix(s, "scripts/")
	return "scripts/" + s
}
