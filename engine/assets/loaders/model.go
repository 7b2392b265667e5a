package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

type ModelLoader struct{}

// Load parses the OBJ file at path. Data is a *metadata.GeometryConfig named
// after the file.
func (ml *ModelLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != ".obj" {
		return nil, fmt.Errorf("model '%s': unsupported format '%s'", name, ext)
	}

	geometry, err := LoadOBJ(f, name)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(geometry.Vertices))*uint64(geometry.VertexSize) + uint64(len(geometry.Indices))*uint64(geometry.IndexSize),
		Data:     geometry,
	}, nil
}

func (ml *ModelLoader) Unload(*metadata.Resource) error {
	return nil
}
