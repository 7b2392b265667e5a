package metadata

type ResourceType int

const (
	ResourceTypeNone ResourceType = iota
	/** @brief Mesh files (.obj). Data is a *GeometryConfig. */
	ResourceTypeModel
	/** @brief Compiled SPIR-V shader stages (.spv). Data is a []uint32. */
	ResourceTypeShader
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeModel:
		return "model"
	case ResourceTypeShader:
		return "shader"
	default:
		return "none"
	}
}

/**
 * @brief A loaded asset. What Data holds depends on the resource type.
 */
type Resource struct {
	Name     string
	FullPath string
	DataSize uint64
	Data     interface{}
}
