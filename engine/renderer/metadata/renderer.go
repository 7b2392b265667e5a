package metadata

type RenderBufferType int

const (
	/** @brief Buffer is use is unknown. Default, but usually invalid. */
	RENDERBUFFER_TYPE_UNKNOWN RenderBufferType = iota
	/** @brief Buffer is used for vertex data. */
	RENDERBUFFER_TYPE_VERTEX
	/** @brief Buffer is used for index data. */
	RENDERBUFFER_TYPE_INDEX
	/** @brief Buffer is used for uniform data, split into equally sized slots. */
	RENDERBUFFER_TYPE_UNIFORM
	/** @brief Buffer is used for staging purposes (i.e. from host-visible to device-local memory) */
	RENDERBUFFER_TYPE_STAGING
)

func (t RenderBufferType) String() string {
	switch t {
	case RENDERBUFFER_TYPE_VERTEX:
		return "vertex"
	case RENDERBUFFER_TYPE_INDEX:
		return "index"
	case RENDERBUFFER_TYPE_UNIFORM:
		return "uniform"
	case RENDERBUFFER_TYPE_STAGING:
		return "staging"
	default:
		return "unknown"
	}
}

type RenderBuffer struct {
	/** @brief Backend identifier, valid until the buffer is destroyed. */
	ID uint32
	/** @brief The type of buffer, which typically determines its use. */
	RenderBufferType RenderBufferType
	/** @brief The total size of the buffer in bytes. */
	TotalSize uint64
	/** @brief The element stride (vertex size, index size or slot size). */
	Stride uint32
	/** @brief Number of independently writable slots. Uniform buffers only. */
	SlotCount uint32
	/** @brief The size in bytes of one slot, including alignment padding. */
	SlotSize uint64
	/** @brief Contains internal data for the renderer-API-specific buffer. */
	InternalData interface{}
}

/**
 * @brief A rectangle of the render target, in pixels, plus its depth range.
 */
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

/**
 * @brief One indexed draw of a mesh using one of its constant buffer slots.
 */
type DrawCall struct {
	Mesh       *Mesh
	Slot       uint32
	IndexCount uint32
	StartIndex uint32
	BaseVertex int32
}
