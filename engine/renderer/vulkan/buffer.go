package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

/**
 * @brief The Vulkan side of a metadata.RenderBuffer.
 */
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   uint64
	Usage  vk.BufferUsageFlags
	// Mapped stays valid for the buffer's lifetime on host visible buffers.
	Mapped unsafe.Pointer
	// Set is the descriptor set of a uniform buffer.
	Set vk.DescriptorSet
}

func BufferCreate(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags, mapMemory bool) (*VulkanBuffer, error) {
	device := context.Device.LogicalDevice
	buffer := &VulkanBuffer{Size: size, Usage: usage}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	var handle vk.Buffer
	if err := vkError("vkCreateBuffer", vk.CreateBuffer(device, &bufferInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	buffer.Handle = handle

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, handle, &requirements)
	requirements.Deref()

	memoryType, err := context.FindMemoryIndex(requirements.MemoryTypeBits, memoryFlags)
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryType,
	}
	var memory vk.DeviceMemory
	if err := vkError("vkAllocateMemory", vk.AllocateMemory(device, &allocateInfo, context.Allocator, &memory)); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	buffer.Memory = memory

	if err := vkError("vkBindBufferMemory", vk.BindBufferMemory(device, handle, memory, 0)); err != nil {
		buffer.Destroy(context)
		return nil, err
	}

	if mapMemory {
		var mapped unsafe.Pointer
		if err := vkError("vkMapMemory", vk.MapMemory(device, memory, 0, vk.DeviceSize(size), 0, &mapped)); err != nil {
			buffer.Destroy(context)
			return nil, err
		}
		buffer.Mapped = mapped
	}
	return buffer, nil
}

// Write copies data into a mapped buffer at offset.
func (b *VulkanBuffer) Write(offset uint64, data []byte) error {
	if b.Mapped == nil {
		return fmt.Errorf("buffer is not host mapped: %w", core.ErrInvalidBuffer)
	}
	if offset+uint64(len(data)) > b.Size {
		return fmt.Errorf("write of %d bytes at %d overflows %d byte buffer: %w", len(data), offset, b.Size, core.ErrInvalidBuffer)
	}
	vk.Memcopy(unsafe.Add(b.Mapped, offset), data)
	return nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if b.Mapped != nil {
		vk.UnmapMemory(device, b.Memory)
		b.Mapped = nil
	}
	if b.Memory != nil {
		vk.FreeMemory(device, b.Memory, context.Allocator)
		b.Memory = nil
	}
	if b.Handle != nil {
		vk.DestroyBuffer(device, b.Handle, context.Allocator)
		b.Handle = nil
	}
}

// bufferUsage maps a render buffer type to the usage of its device buffer.
func bufferUsage(bufferType metadata.RenderBufferType) (vk.BufferUsageFlags, error) {
	switch bufferType {
	case metadata.RENDERBUFFER_TYPE_VERTEX:
		return vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit | vk.BufferUsageTransferDstBit), nil
	case metadata.RENDERBUFFER_TYPE_INDEX:
		return vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit | vk.BufferUsageTransferDstBit), nil
	case metadata.RENDERBUFFER_TYPE_UNIFORM:
		return vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), nil
	case metadata.RENDERBUFFER_TYPE_STAGING:
		return vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), nil
	default:
		return 0, fmt.Errorf("unsupported buffer type '%s': %w", bufferType, core.ErrInvalidBuffer)
	}
}

// uniformSlotSize pads a slot to the device's dynamic offset alignment.
func uniformSlotSize(slotSize, alignment uint64) uint64 {
	if alignment < VULKAN_MIN_UNIFORM_ALIGNMENT {
		alignment = VULKAN_MIN_UNIFORM_ALIGNMENT
	}
	return alignUp(slotSize, alignment)
}

/**
 * @brief Uploads data into a device local buffer through a staging buffer.
 * Inside an upload scope the copy is recorded into the scope's command
 * buffer and the staging buffer lives until SubmitCommands. Outside a scope
 * a one-shot command buffer is submitted and waited on.
 */
func (vr *VulkanRenderer) upload(dst *VulkanBuffer, data []byte) error {
	context := vr.context
	staging, err := BufferCreate(context, uint64(len(data)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		true)
	if err != nil {
		return err
	}
	if err := staging.Write(0, data); err != nil {
		staging.Destroy(context)
		return err
	}

	region := []vk.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: vk.DeviceSize(len(data))}}

	if vr.recordingUploads {
		vk.CmdCopyBuffer(context.UploadCommandBuffer.Handle, staging.Handle, dst.Handle, 1, region)
		vr.pendingStaging = append(vr.pendingStaging, staging)
		return nil
	}

	pool := context.Device.GraphicsCommandPool
	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		staging.Destroy(context)
		return err
	}
	vk.CmdCopyBuffer(cb.Handle, staging.Handle, dst.Handle, 1, region)
	err = cb.EndSingleUse(context, pool, context.Device.GraphicsQueue)
	staging.Destroy(context)
	return err
}

func (vr *VulkanRenderer) RenderBufferCreate(bufferType metadata.RenderBufferType, data []byte, stride, slotCount uint32, slotSize uint64) (*metadata.RenderBuffer, error) {
	if !vr.initialized {
		return nil, core.ErrBackendNotReady
	}
	context := vr.context

	usage, err := bufferUsage(bufferType)
	if err != nil {
		return nil, err
	}

	rb := &metadata.RenderBuffer{
		RenderBufferType: bufferType,
		Stride:           stride,
	}

	var buffer *VulkanBuffer
	switch bufferType {
	case metadata.RENDERBUFFER_TYPE_UNIFORM:
		if slotCount == 0 || slotSize == 0 {
			return nil, fmt.Errorf("uniform buffer needs slots: %w", core.ErrSlotOutOfRange)
		}
		rb.SlotCount = slotCount
		rb.SlotSize = uniformSlotSize(slotSize, context.Device.UniformAlignment)
		rb.TotalSize = uint64(slotCount) * rb.SlotSize

		buffer, err = BufferCreate(context, rb.TotalSize, usage,
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
			true)
		if err != nil {
			return nil, err
		}
		set, err := context.Descriptors.AllocateSet(context, buffer.Handle)
		if err != nil {
			buffer.Destroy(context)
			return nil, err
		}
		buffer.Set = set
	case metadata.RENDERBUFFER_TYPE_VERTEX, metadata.RENDERBUFFER_TYPE_INDEX:
		if len(data) == 0 {
			return nil, core.ErrEmptyGeometry
		}
		rb.TotalSize = uint64(len(data))

		buffer, err = BufferCreate(context, rb.TotalSize, usage,
			vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit), false)
		if err != nil {
			return nil, err
		}
		if err := vr.upload(buffer, data); err != nil {
			buffer.Destroy(context)
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported buffer type '%s': %w", bufferType, core.ErrInvalidBuffer)
	}

	rb.ID = vr.bufferIDs.Acquire(rb)
	rb.InternalData = buffer
	vr.buffers[rb.ID] = rb
	return rb, nil
}

func (vr *VulkanRenderer) RenderBufferDestroy(rb *metadata.RenderBuffer) {
	buffer, ok := vr.lookup(rb)
	if !ok {
		return
	}
	context := vr.context
	// The buffer may still be referenced by a submitted frame.
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	if buffer.Set != nil {
		context.Descriptors.FreeSet(context, buffer.Set)
		buffer.Set = nil
	}
	buffer.Destroy(context)

	delete(vr.buffers, rb.ID)
	if err := vr.bufferIDs.Release(rb.ID); err != nil {
		core.LogWarn("vulkan: %s", err)
	}
	rb.InternalData = nil
}

func (vr *VulkanRenderer) RenderBufferLoadSlot(rb *metadata.RenderBuffer, slot uint32, data []byte) error {
	buffer, ok := vr.lookup(rb)
	if !ok || rb.RenderBufferType != metadata.RENDERBUFFER_TYPE_UNIFORM {
		return core.ErrInvalidBuffer
	}
	if slot >= rb.SlotCount {
		return core.ErrSlotOutOfRange
	}
	if uint64(len(data)) > rb.SlotSize {
		return fmt.Errorf("%d bytes do not fit a %d byte slot: %w", len(data), rb.SlotSize, core.ErrInvalidBuffer)
	}
	return buffer.Write(uint64(slot)*rb.SlotSize, data)
}

func (vr *VulkanRenderer) lookup(rb *metadata.RenderBuffer) (*VulkanBuffer, bool) {
	if rb == nil {
		return nil, false
	}
	known, ok := vr.buffers[rb.ID]
	if !ok || known != rb {
		return nil, false
	}
	buffer, ok := rb.InternalData.(*VulkanBuffer)
	return buffer, ok
}

// releaseStaging frees the staging buffers of a submitted upload scope.
func (vr *VulkanRenderer) releaseStaging() {
	for _, staging := range vr.pendingStaging {
		staging.Destroy(vr.context)
	}
	vr.pendingStaging = vr.pendingStaging[:0]
}
