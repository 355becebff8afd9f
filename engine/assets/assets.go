package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/loader"
	"github.com/spaghettifunk/forma/engine/mesh"
)

type AssetInfo struct {
	Path         string
	LastImported time.Time
}

/**
 * @brief ReimportEvent carries the result of one re-run of extraction after
 * a watched model file changed on disk.
 */
type ReimportEvent struct {
	Path   string
	Data   mesh.MeshData
	Result loader.LoadResult
}

/**
 * @brief AssetManager watches directories for model file changes and re-runs
 * extraction when one is created or modified. Fresh mesh data is published
 * over the Reimports channel; consumers rebuild their live trees from it.
 */
type AssetManager struct {
	meshLoader *loader.Loader
	assets     map[string]AssetInfo

	mutex sync.RWMutex

	done      chan struct{}
	fsnotify  *fsnotify.Watcher
	isClosed  bool
	reimports chan ReimportEvent
}

func NewAssetManager(meshLoader *loader.Loader) (*AssetManager, error) {
	if meshLoader == nil {
		return nil, errors.New("asset manager requires a loader")
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		meshLoader: meshLoader,
		assets:     make(map[string]AssetInfo),
		fsnotify:   fsWatch,
		reimports:  make(chan ReimportEvent, 16),
		done:       make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize(watchDirs ...string) error {
	go am.start()

	for _, dir := range watchDirs {
		if err := am.addRecursive(dir); err != nil {
			return err
		}
	}
	return nil
}

// Reimports is the stream of freshly extracted mesh data.
func (am *AssetManager) Reimports() <-chan ReimportEvent {
	return am.reimports
}

// Assets returns a snapshot of the indexed model files.
func (am *AssetManager) Assets() []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	out := make([]AssetInfo, 0, len(am.assets))
	for _, info := range am.assets {
		out = append(out, info)
	}
	return out
}

func (am *AssetManager) Shutdown() {
	if am.isClosed {
		return
	}
	am.isClosed = true
	close(am.done)
}

// addRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	return am.watchRecursive(name, false)
}

func (am *AssetManager) start() {
	for {
		select {

		case e := <-am.fsnotify.Events:
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name, false)
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 && isModelFile(e.Name) {
				am.reimport(e.Name)
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
				am.fsnotify.Remove(e.Name)
			}

		case e := <-am.fsnotify.Errors:
			core.LogError(e.Error())

		case <-am.done:
			am.fsnotify.Close()
			close(am.reimports)
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the model files already present.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	wd = wd + "/" // add trailing slash
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		if isModelFile(walkPath) {
			am.indexAsset(strings.TrimPrefix(walkPath, wd))
		}
		return nil
	})
}

/**
 * @brief Re-runs extraction on a changed model file and publishes the
 * result. A full channel drops the event with a notice rather than stalling
 * the watch loop.
 */
func (am *AssetManager) reimport(path string) {
	data, result := am.meshLoader.LoadMeshFromAssetFile(path)
	am.indexAsset(path)

	select {
	case am.reimports <- ReimportEvent{Path: path, Data: data, Result: result}:
	default:
		core.LogWarn("reimport channel is full, dropping event for `%s`", path)
	}
}

func (am *AssetManager) indexAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	am.assets[path] = AssetInfo{
		Path:         path,
		LastImported: time.Now(),
	}
}

func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func isModelFile(path string) bool {
	switch filepath.Ext(path) {
	case ".gltf", ".glb":
		return true
	default:
		return false
	}
}
