package vulkan

import (
	vk "github.com/goki/vulkan"
)

/**
 * @brief The set layout and pool behind per-mesh constant buffers. Each
 * uniform buffer owns one set whose binding is a dynamic uniform buffer, so
 * picking a viewport slot is only a dynamic offset at bind time.
 */
type VulkanDescriptors struct {
	Layout vk.DescriptorSetLayout
	Pool   vk.DescriptorPool
	// Range is the number of bytes the shader sees per slot.
	Range uint64
}

func DescriptorsCreate(context *VulkanContext, bindingRange uint64) (*VulkanDescriptors, error) {
	descriptors := &VulkanDescriptors{Range: bindingRange}
	device := context.Device.LogicalDevice

	binding := vk.DescriptorSetLayoutBinding{
		Binding:         VULKAN_OBJECT_CONSTANTS_BINDING,
		DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{binding},
	}
	var layout vk.DescriptorSetLayout
	if err := vkError("vkCreateDescriptorSetLayout", vk.CreateDescriptorSetLayout(device, &layoutInfo, context.Allocator, &layout)); err != nil {
		return nil, err
	}
	descriptors.Layout = layout

	poolSize := vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeUniformBufferDynamic,
		DescriptorCount: VULKAN_MAX_DESCRIPTOR_SETS,
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       VULKAN_MAX_DESCRIPTOR_SETS,
		PoolSizeCount: 1,
		PPoolSizes:    []vk.DescriptorPoolSize{poolSize},
	}
	var pool vk.DescriptorPool
	if err := vkError("vkCreateDescriptorPool", vk.CreateDescriptorPool(device, &poolInfo, context.Allocator, &pool)); err != nil {
		descriptors.Destroy(context)
		return nil, err
	}
	descriptors.Pool = pool
	return descriptors, nil
}

func (d *VulkanDescriptors) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if d.Pool != nil {
		vk.DestroyDescriptorPool(device, d.Pool, context.Allocator)
		d.Pool = nil
	}
	if d.Layout != nil {
		vk.DestroyDescriptorSetLayout(device, d.Layout, context.Allocator)
		d.Layout = nil
	}
}

// AllocateSet allocates a set pointing at the start of buffer. The slot is
// chosen later with a dynamic offset.
func (d *VulkanDescriptors) AllocateSet(context *VulkanContext, buffer vk.Buffer) (vk.DescriptorSet, error) {
	device := context.Device.LogicalDevice

	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.Pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{d.Layout},
	}
	sets := make([]vk.DescriptorSet, 1)
	if err := vkError("vkAllocateDescriptorSets", vk.AllocateDescriptorSets(device, &allocateInfo, &sets[0])); err != nil {
		return nil, err
	}

	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: buffer,
		Offset: 0,
		Range:  vk.DeviceSize(d.Range),
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          sets[0],
		DstBinding:      VULKAN_OBJECT_CONSTANTS_BINDING,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}
	vk.UpdateDescriptorSets(device, 1, []vk.WriteDescriptorSet{write}, 0, nil)
	return sets[0], nil
}

func (d *VulkanDescriptors) FreeSet(context *VulkanContext, set vk.DescriptorSet) {
	if set == nil {
		return
	}
	vk.FreeDescriptorSets(context.Device.LogicalDevice, d.Pool, 1, &set)
}
