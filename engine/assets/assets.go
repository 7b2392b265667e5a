package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/multiview/engine/assets/loaders"
	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/geometry"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
	"github.com/spaghettifunk/multiview/engine/systems"
)

const (
	ModelsDir  = "models"
	ShadersDir = "shaders"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

type AssetManagerConfig struct {
	/** @brief The directory holding models/ and shaders/. */
	Root string
	/** @brief Watch the root for changes and drop stale cache entries. */
	Watch bool
	/** @brief The colour loaded model vertices are painted with. */
	VertexColour math.Vec4
}

type AssetManager struct {
	config AssetManagerConfig

	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader
	models  map[string]*metadata.GeometryConfig
	jobs    *systems.JobSystem

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	started  bool
	isClosed bool
}

func NewAssetManager(config *AssetManagerConfig) (*AssetManager, error) {
	am := &AssetManager{
		config:  *config,
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
		models:  make(map[string]*metadata.GeometryConfig),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	if config.Watch {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		am.fsnotify = fsWatch
	}

	// Register loaders
	am.registerLoader(metadata.ResourceTypeModel, &loaders.ModelLoader{})
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})

	return am, nil
}

// Initialize indexes the asset root and, when watching, starts the watcher.
func (am *AssetManager) Initialize() error {
	info, err := os.Stat(am.config.Root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("asset root '%s': %w", am.config.Root, core.ErrAssetNotFound)
	}
	if err := am.watchRecursive(am.config.Root); err != nil {
		return err
	}
	if am.fsnotify != nil {
		am.started = true
		go am.start()
	}
	core.LogInfo("Asset manager indexed %d files under '%s' (watch=%t).", am.Count(), am.config.Root, am.config.Watch)
	return nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	if am.fsnotify == nil {
		return nil
	}
	if !am.started {
		return am.fsnotify.Close()
	}
	close(am.done)
	<-am.stopped
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// SetJobSystem makes changed models that are in use parse again in the
// background instead of only dropping out of the cache.
func (am *AssetManager) SetJobSystem(js *systems.JobSystem) {
	am.mutex.Lock()
	am.jobs = js
	am.mutex.Unlock()
}

func (am *AssetManager) ModelPath(name string) string {
	return filepath.Join(am.config.Root, ModelsDir, name)
}

func (am *AssetManager) ShaderPath(name string) string {
	return filepath.Join(am.config.Root, ShadersDir, name)
}

// LoadAsset loads the file at path with the loader registered for resourceType.
func (am *AssetManager) LoadAsset(path string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	loader, loaderExists := am.loaders[resourceType]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", resourceType)
	}

	res, err := loader.Load(path, params)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, core.ErrAssetNotFound)
		}
		return nil, err
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{Path: path, Type: resourceType, LastLoaded: time.Now()}
	am.mutex.Unlock()
	return res, nil
}

/**
 * @brief Returns the parsed model named name (a file under models/). Results
 * are cached until the file changes on disk; callers must not modify them.
 */
func (am *AssetManager) LoadModel(name string) (*metadata.GeometryConfig, error) {
	key := modelKey(name)
	am.mutex.RLock()
	cached, ok := am.models[key]
	am.mutex.RUnlock()
	if ok {
		return cached, nil
	}

	res, err := am.LoadAsset(am.ModelPath(name), metadata.ResourceTypeModel, nil)
	if err != nil {
		return nil, err
	}
	geometry, ok := res.Data.(*metadata.GeometryConfig)
	if !ok {
		return nil, fmt.Errorf("model '%s' loaded as %T: %w", name, res.Data, core.ErrUnknown)
	}
	paint(geometry, am.config.VertexColour)

	am.mutex.Lock()
	am.models[key] = geometry
	am.mutex.Unlock()

	core.LogDebug("model '%s' loaded: %d vertices, %d indices", name, geometry.VertexCount, geometry.IndexCount)
	return geometry, nil
}

// LoadShader returns the SPIR-V words of the shader named name (a file under shaders/).
func (am *AssetManager) LoadShader(name string) ([]uint32, error) {
	res, err := am.LoadAsset(am.ShaderPath(name), metadata.ResourceTypeShader, nil)
	if err != nil {
		return nil, err
	}
	return res.Data.([]uint32), nil
}

/**
 * @brief Parses the given models concurrently on the job system and waits for
 * all of them. Failures are joined into the returned error; successful loads
 * stay cached either way.
 */
func (am *AssetManager) Preload(js *systems.JobSystem, names []string) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, name := range names {
		name := name
		wg.Add(1)
		err := js.Submit(systems.JobTask{
			Name: "preload " + name,
			OnStart: func() error {
				_, err := am.LoadModel(name)
				return err
			},
			OnFailure: func(err error) {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			},
			OnCompletionCallback: wg.Done,
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	}
	wg.Wait()
	return errors.Join(errs...)
}

// IsCached reports whether the model is held in the cache.
func (am *AssetManager) IsCached(name string) bool {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	_, ok := am.models[modelKey(name)]
	return ok
}

// Invalidate drops a cached model so the next LoadModel reads the file again.
func (am *AssetManager) Invalidate(name string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if _, ok := am.models[modelKey(name)]; ok {
		delete(am.models, modelKey(name))
		core.LogDebug("model '%s' invalidated", name)
	}
}

// Count returns the number of indexed files.
func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Info returns the index entry for path.
func (am *AssetManager) Info(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[path]
	return info, ok
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("failed to watch '%s': %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
			}

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())

		case <-am.done:
			if err := am.fsnotify.Close(); err != nil {
				core.LogWarn("closing asset watcher: %s", err)
			}
			return
		}
	}
}

// watchRecursive indexes every file under path and, when watching, adds every
// directory to the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if am.fsnotify != nil {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}

	var reload string
	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path: path,
		Type: assetType,
	}
	if key, ok := am.modelKeyOf(path); ok && assetType == metadata.ResourceTypeModel {
		if _, cached := am.models[key]; cached {
			delete(am.models, key)
			reload = key
		}
	}
	jobs := am.jobs
	am.mutex.Unlock()

	if reload != "" && jobs != nil {
		am.reload(jobs, reload)
	}
}

// reload parses a changed model again on the job system.
func (am *AssetManager) reload(js *systems.JobSystem, name string) {
	js.AddWorkNonBlocking(systems.JobTask{
		Name: "reload " + name,
		OnStart: func() error {
			_, err := am.LoadModel(name)
			return err
		},
		OnComplete: func() {
			core.LogInfo("model '%s' reloaded", name)
		},
	})
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
	if key, ok := am.modelKeyOf(path); ok {
		delete(am.models, key)
	}
}

// modelKeyOf returns the cache key of a file path under models/.
func (am *AssetManager) modelKeyOf(path string) (string, bool) {
	rel, err := filepath.Rel(filepath.Join(am.config.Root, ModelsDir), path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return modelKey(rel), true
}

// modelKey is the cache key of a model name relative to models/.
func modelKey(name string) string {
	return filepath.ToSlash(filepath.Clean(name))
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".obj":
		return metadata.ResourceTypeModel
	case ".spv":
		return metadata.ResourceTypeShader
	default:
		return metadata.ResourceTypeNone
	}
}

func paint(cfg *metadata.GeometryConfig, colour math.Vec4) {
	if colour == (math.Vec4{}) {
		return
	}
	geometry.Paint(cfg, colour)
}
