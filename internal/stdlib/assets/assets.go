// Package assets implements the assets standard library (§4.7): names
// resolve first against an agent-served remote manifest, then against
// embedded assets (§D, grounded on the original's AgentAssets-then-
// EmbeddedAssets resolution order, eldritch-libassets/src/std/read_impl.rs).
// When the remote manifest lists more than one version of a name,
// golang.org/x/mod/semver picks the newest; golang.org/x/sync/singleflight
// collapses concurrent reads of the same name into one fetch;
// fsnotify watches the on-disk cache directory so long-running sessions
// pick up host-refreshed assets without a restart.
package assets

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
	"golang.org/x/sync/singleflight"

	"github.com/fsnotify/fsnotify"

	"github.com/spellshift/eldritch/internal/agentiface"
	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

// Manifest maps an asset's base name to the available versioned variants
// the agent-served remote serves (e.g. "tool" -> ["tool@v1.0.0", "tool@v1.2.0"]).
type Manifest map[string][]string

type impl struct {
	agent    agentiface.Agent
	embedded fs.FS
	manifest Manifest

	group singleflight.Group
	mu    sync.Mutex
	cache map[string][]byte

	watcher *fsnotify.Watcher
}

// New wires the real assets library: embedded is the compiled-in asset
// tree (e.g. via go:embed in the host binary), manifest the remote
// version listing, cacheDir an on-disk directory fsnotify watches for
// host-refreshed assets.
func New(a agentiface.Agent, embedded fs.FS, manifest Manifest, cacheDir string) value.Dispatcher {
	im := &impl{agent: a, embedded: embedded, manifest: manifest, cache: make(map[string][]byte)}
	if cacheDir != "" {
		if w, err := fsnotify.NewWatcher(); err == nil {
			_ = w.Add(cacheDir)
			im.watcher = w
			go im.watchLoop()
		}
	}
	return &library.Table{Name: "assets", Methods: map[string]library.Method{
		"read":        im.read,
		"read_binary": im.readBinary,
		"list":        im.list,
		"copy":        im.copyAsset,
	}}
}

// watchLoop drops any cached bytes for a name when its backing file under
// the watched cache directory changes, so the next read re-fetches.
func (im *impl) watchLoop() {
	for ev := range im.watcher.Events {
		if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
			im.mu.Lock()
			delete(im.cache, filepath.Base(ev.Name))
			im.mu.Unlock()
		}
	}
}

// resolveVersion picks the newest semver-tagged variant of name from the
// manifest, falling back to name itself when it carries no version
// suffixes.
func (im *impl) resolveVersion(name string) string {
	variants, ok := im.manifest[name]
	if !ok || len(variants) == 0 {
		return name
	}
	sorted := append([]string(nil), variants...)
	sort.Slice(sorted, func(i, j int) bool {
		return semver.Compare(versionSuffix(sorted[i]), versionSuffix(sorted[j])) < 0
	})
	return sorted[len(sorted)-1]
}

func versionSuffix(variant string) string {
	if i := strings.LastIndex(variant, "@"); i >= 0 {
		return variant[i+1:]
	}
	return variant
}

func (im *impl) fetch(name string) ([]byte, error) {
	im.mu.Lock()
	if b, ok := im.cache[name]; ok {
		im.mu.Unlock()
		return b, nil
	}
	im.mu.Unlock()

	v, err, _ := im.group.Do(name, func() (any, error) {
		resolved := im.resolveVersion(name)
		if im.agent != nil {
			if b, err := im.agent.FetchAsset(resolved); err == nil {
				return b, nil
			}
		}
		if im.embedded != nil {
			if b, err := fs.ReadFile(im.embedded, resolved); err == nil {
				return b, nil
			}
		}
		return nil, library.MethodError(diag.ValueError, "asset not found: "+name)
	})
	if err != nil {
		return nil, err
	}
	b := v.([]byte)
	im.mu.Lock()
	im.cache[name] = b
	im.mu.Unlock()
	return b, nil
}

func (im *impl) read(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("read", args, 1); err != nil {
		return value.None, err
	}
	name, err := library.Str("read", args[0])
	if err != nil {
		return value.None, err
	}
	b, err := im.fetch(name)
	if err != nil {
		return value.None, err
	}
	return value.String(string(b)), nil
}

func (im *impl) readBinary(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("read_binary", args, 1); err != nil {
		return value.None, err
	}
	name, err := library.Str("read_binary", args[0])
	if err != nil {
		return value.None, err
	}
	b, err := im.fetch(name)
	if err != nil {
		return value.None, err
	}
	return value.Bytes(append([]byte(nil), b...)), nil
}

func (im *impl) list(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("list", args, 0); err != nil {
		return value.None, err
	}
	seen := make(map[string]bool)
	var names []string
	for name := range im.manifest {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if im.embedded != nil {
		_ = fs.WalkDir(im.embedded, ".", func(path string, d fs.DirEntry, err error) error {
			if err == nil && !d.IsDir() && !seen[path] {
				seen[path] = true
				names = append(names, path)
			}
			return nil
		})
	}
	sort.Strings(names)
	return library.ToStringList(names), nil
}

func (im *impl) copyAsset(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("copy", args, 2); err != nil {
		return value.None, err
	}
	src, err := library.Str("copy", args[0])
	if err != nil {
		return value.None, err
	}
	dst, err := library.Str("copy", args[1])
	if err != nil {
		return value.None, err
	}
	b, err := im.fetch(src)
	if err != nil {
		return value.None, err
	}
	return value.None, writeFile(dst, b)
}
