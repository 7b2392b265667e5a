package metadata

/**
 * @brief The GPU resources owned by one scene object: a vertex buffer, an
 * index buffer and a constant buffer holding one slot per viewport.
 */
type Mesh struct {
	VertexBuffer   *RenderBuffer
	IndexBuffer    *RenderBuffer
	ConstantBuffer *RenderBuffer
	VertexCount    uint32
	IndexCount     uint32
}

// SlotCount returns the number of constant buffer slots, or 0.
func (m *Mesh) SlotCount() uint32 {
	if m == nil || m.ConstantBuffer == nil {
		return 0
	}
	return m.ConstantBuffer.SlotCount
}
