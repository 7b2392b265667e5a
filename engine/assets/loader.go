package assets

import "github.com/spaghettifunk/multiview/engine/renderer/metadata"

type Loader interface {
	Load(path string, params interface{}) (*metadata.Resource, error) // `interface{}` here allows loaders to take per-type options
	Unload(*metadata.Resource) error
}
