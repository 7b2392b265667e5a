package assets

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/multiview/engine/assets/loaders"
	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/systems"
)

const triangle = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

func newAssetRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ModelsDir), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ShadersDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ModelsDir, "tri.obj"), []byte(triangle), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ModelsDir, "broken.obj"), []byte("v 1 2\n"), 0o644))

	spv := make([]byte, 0, 20)
	for _, w := range []uint32{loaders.SPIRVMagic, 0x00010000, 0, 1, 0} {
		spv = binary.LittleEndian.AppendUint32(spv, w)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, ShadersDir, "test.vert.spv"), spv, 0o644))
	return root
}

func newManager(t *testing.T, root string, watch bool) *AssetManager {
	t.Helper()
	am, err := NewAssetManager(&AssetManagerConfig{
		Root:         root,
		Watch:        watch,
		VertexColour: math.NewVec4(0.5, 0.5, 0.5, 1),
	})
	require.NoError(t, err)
	require.NoError(t, am.Initialize())
	t.Cleanup(func() { _ = am.Shutdown() })
	return am
}

func TestInitializeIndexesFiles(t *testing.T) {
	am := newManager(t, newAssetRoot(t), false)
	assert.Equal(t, 3, am.Count())
}

func TestInitializeRequiresRoot(t *testing.T) {
	am, err := NewAssetManager(&AssetManagerConfig{Root: filepath.Join(t.TempDir(), "nope")})
	require.NoError(t, err)
	assert.ErrorIs(t, am.Initialize(), core.ErrAssetNotFound)
}

func TestLoadModelCachesAndPaints(t *testing.T) {
	am := newManager(t, newAssetRoot(t), false)

	first, err := am.LoadModel("tri.obj")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), first.IndexCount)
	assert.Equal(t, math.NewVec4(0.5, 0.5, 0.5, 1), first.Vertices[0].Colour)
	assert.True(t, am.IsCached("tri.obj"))

	second, err := am.LoadModel("tri.obj")
	require.NoError(t, err)
	assert.Same(t, first, second)

	am.Invalidate("tri.obj")
	assert.False(t, am.IsCached("tri.obj"))
	third, err := am.LoadModel("tri.obj")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestLoadModelErrors(t *testing.T) {
	am := newManager(t, newAssetRoot(t), false)

	_, err := am.LoadModel("missing.obj")
	assert.ErrorIs(t, err, core.ErrAssetNotFound)

	_, err = am.LoadModel("broken.obj")
	assert.ErrorIs(t, err, loaders.ErrMalformedOBJ)
	assert.False(t, am.IsCached("broken.obj"))
}

func TestLoadShader(t *testing.T) {
	am := newManager(t, newAssetRoot(t), false)
	code, err := am.LoadShader("test.vert.spv")
	require.NoError(t, err)
	assert.Equal(t, loaders.SPIRVMagic, code[0])

	_, err = am.LoadShader("nope.spv")
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
}

func TestPreload(t *testing.T) {
	am := newManager(t, newAssetRoot(t), false)
	js, err := systems.NewJobSystem(2, 4)
	require.NoError(t, err)
	defer js.Shutdown()

	err = am.Preload(js, []string{"tri.obj", "broken.obj", "missing.obj"})
	assert.ErrorIs(t, err, loaders.ErrMalformedOBJ)
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
	assert.True(t, am.IsCached("tri.obj"))
}

func TestPreloadOnStoppedJobSystem(t *testing.T) {
	am := newManager(t, newAssetRoot(t), false)
	js, err := systems.NewJobSystem(2, 4)
	require.NoError(t, err)
	require.NoError(t, js.Shutdown())

	err = am.Preload(js, []string{"tri.obj", "broken.obj"})
	assert.ErrorIs(t, err, systems.ErrJobSystemStopped)
	assert.False(t, am.IsCached("tri.obj"))
}

func TestWatcherInvalidatesChangedModels(t *testing.T) {
	root := newAssetRoot(t)
	am := newManager(t, root, true)

	_, err := am.LoadModel("tri.obj")
	require.NoError(t, err)
	require.True(t, am.IsCached("tri.obj"))

	quad := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n"
	require.NoError(t, os.WriteFile(am.ModelPath("tri.obj"), []byte(quad), 0o644))

	assert.Eventually(t, func() bool { return !am.IsCached("tri.obj") }, 2*time.Second, 10*time.Millisecond)

	reloaded, err := am.LoadModel("tri.obj")
	require.NoError(t, err)
	assert.Equal(t, uint32(6), reloaded.IndexCount)
}

func TestChangedModelReloadsOnJobSystem(t *testing.T) {
	am := newManager(t, newAssetRoot(t), false)
	js, err := systems.NewJobSystem(1, 1)
	require.NoError(t, err)
	defer js.Shutdown()
	am.SetJobSystem(js)

	_, err = am.LoadModel("tri.obj")
	require.NoError(t, err)

	quad := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n"
	require.NoError(t, os.WriteFile(am.ModelPath("tri.obj"), []byte(quad), 0o644))
	am.handleFileEvent(am.ModelPath("tri.obj"))

	require.Eventually(t, func() bool { return am.IsCached("tri.obj") }, 2*time.Second, 10*time.Millisecond)
	reloaded, err := am.LoadModel("tri.obj")
	require.NoError(t, err)
	assert.Equal(t, uint32(6), reloaded.IndexCount)
}

func TestUnusedModelChangeDoesNotLoad(t *testing.T) {
	am := newManager(t, newAssetRoot(t), false)
	js, err := systems.NewJobSystem(1, 1)
	require.NoError(t, err)
	am.SetJobSystem(js)

	am.handleFileEvent(am.ModelPath("tri.obj"))
	require.NoError(t, js.Shutdown())
	assert.False(t, am.IsCached("tri.obj"))
}

func TestSubdirectoryModelsAreInvalidated(t *testing.T) {
	root := newAssetRoot(t)
	path := filepath.Join(root, ModelsDir, "props", "tri.obj")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(triangle), 0o644))
	am := newManager(t, root, false)

	_, err := am.LoadModel("props/tri.obj")
	require.NoError(t, err)
	assert.True(t, am.IsCached("./props/tri.obj"))

	am.handleFileEvent(path)
	assert.False(t, am.IsCached("props/tri.obj"))

	_, err = am.LoadModel("props/tri.obj")
	require.NoError(t, err)
	am.removeAsset(path)
	assert.False(t, am.IsCached("props/tri.obj"))
	_, ok := am.Info(path)
	assert.False(t, ok)
}

func TestFilesOutsideModelsKeepCache(t *testing.T) {
	root := newAssetRoot(t)
	am := newManager(t, root, false)
	_, err := am.LoadModel("tri.obj")
	require.NoError(t, err)

	stray := filepath.Join(root, "tri.obj")
	require.NoError(t, os.WriteFile(stray, []byte(triangle), 0o644))
	am.handleFileEvent(stray)
	assert.True(t, am.IsCached("tri.obj"))
}

func TestShutdownIsIdempotent(t *testing.T) {
	am, err := NewAssetManager(&AssetManagerConfig{Root: newAssetRoot(t), Watch: true})
	require.NoError(t, err)
	require.NoError(t, am.Shutdown())
	require.NoError(t, am.Shutdown())
}
