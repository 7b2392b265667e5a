package vulkan

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

// Surface is the window side of the backend: instance extensions, the
// loader entry point and surface creation.
type Surface interface {
	GetInstanceProcAddress() unsafe.Pointer
	GetRequiredExtensionNames() []string
	CreateWindowSurface(instance interface{}) (uintptr, error)
	FramebufferSize() (uint32, uint32)
}

type Config struct {
	VertexShader   string
	FragmentShader string
	ClearColour    [4]float32
	Debug          bool
}

type VulkanRenderer struct {
	surface Surface
	shaders ShaderSource
	config  Config

	FrameNumber             uint64
	context                 *VulkanContext
	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	initialized      bool
	framing          bool
	recordingUploads bool
	pendingStaging   []*VulkanBuffer

	bufferIDs *core.IdentifierPool
	buffers   map[uint32]*metadata.RenderBuffer
}

func New(surface Surface, shaders ShaderSource, config Config) *VulkanRenderer {
	return &VulkanRenderer{
		surface:   surface,
		shaders:   shaders,
		config:    config,
		context:   &VulkanContext{},
		bufferIDs: core.NewIdentifierPool(64),
		buffers:   make(map[uint32]*metadata.RenderBuffer),
	}
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	procAddr := vr.surface.GetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil: %w", core.ErrBackendNotReady)
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vk: %w", err)
	}

	// TODO: custom allocator.
	vr.context.Allocator = nil
	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight
	if w, h := vr.surface.FramebufferSize(); w != 0 && h != 0 {
		vr.context.FramebufferWidth, vr.context.FramebufferHeight = w, h
	}

	if err := vr.createInstance(appName); err != nil {
		return err
	}

	// Debugger
	if vr.config.Debug {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vkError("vkCreateDebugReportCallbackEXT", vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			return err
		}
		vr.context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.surface.CreateWindowSurface(vr.context.Instance)
	if err != nil {
		return fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	// Device creation
	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	// Swapchain
	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	rp, err := RenderpassCreate(vr.context, vr.config.ClearColour, 1.0, 0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	if err := regenerateFramebuffers(vr.context, vr.context.Swapchain, vr.context.MainRenderpass); err != nil {
		return err
	}

	descriptors, err := DescriptorsCreate(vr.context, metadata.ObjectConstantsSize)
	if err != nil {
		return err
	}
	vr.context.Descriptors = descriptors

	if err := vr.createPipeline(); err != nil {
		return err
	}

	// Command buffers.
	pool := vr.context.Device.GraphicsCommandPool
	if vr.context.GraphicsCommandBuffer, err = NewVulkanCommandBuffer(vr.context, pool, true); err != nil {
		return err
	}
	if vr.context.UploadCommandBuffer, err = NewVulkanCommandBuffer(vr.context, pool, true); err != nil {
		return err
	}
	core.LogDebug("Vulkan command buffers created.")

	// Sync objects.
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	if err := vkError("vkCreateSemaphore", vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.ImageAvailableSemaphore)); err != nil {
		return err
	}
	if err := vkError("vkCreateSemaphore", vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.QueueCompleteSemaphore)); err != nil {
		return err
	}
	// Signaled, so the first frame does not wait on a frame that never ran.
	if vr.context.InFlightFence, err = NewFence(vr.context, true); err != nil {
		return err
	}

	vr.initialized = true
	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance(appName string) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Multiview"),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := vr.surface.GetRequiredExtensionNames()
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	requiredLayers := []string{}
	if vr.config.Debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		requiredLayers = append(requiredLayers, "VK_LAYER_KHRONOS_validation")
		if err := checkValidationLayers(requiredLayers); err != nil {
			return err
		}
	}
	core.LogDebug("Required extensions: %v", requiredExtensions)

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)
	createInfo.EnabledLayerCount = uint32(len(requiredLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredLayers)

	var instance vk.Instance
	if err := vkError("vkCreateInstance", vk.CreateInstance(&createInfo, vr.context.Allocator, &instance)); err != nil {
		return err
	}
	vr.context.Instance = instance
	if err := vk.InitInstance(instance); err != nil {
		return err
	}
	core.LogInfo("Vulkan Instance created.")
	return nil
}

// checkValidationLayers makes sure every required layer is installed.
func checkValidationLayers(required []string) error {
	var count uint32
	if err := vkError("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return err
	}
	available := make([]vk.LayerProperties, count)
	if err := vkError("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, available)); err != nil {
		return err
	}

	for _, name := range required {
		found := false
		for i := range available {
			available[i].Deref()
			end := FindFirstZeroInByteArray(available[i].LayerName[:])
			if name == string(available[i].LayerName[:end]) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("required validation layer is missing: %s", name)
		}
	}
	core.LogInfo("All required validation layers are present.")
	return nil
}

func (vr *VulkanRenderer) createPipeline() error {
	vertex, err := NewShaderStage(vr.context, vr.shaders, vr.config.VertexShader, vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	defer vertex.Destroy(vr.context)

	fragment, err := NewShaderStage(vr.context, vr.shaders, vr.config.FragmentShader, vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	defer fragment.Destroy(vr.context)

	pipeline, err := NewGraphicsPipeline(vr.context, &VulkanPipelineConfig{
		Renderpass:           vr.context.MainRenderpass,
		Stride:               math.Vertex3DSize,
		Attributes:           vertexAttributes(),
		DescriptorSetLayouts: []vk.DescriptorSetLayout{vr.context.Descriptors.Layout},
		Stages: []vk.PipelineShaderStageCreateInfo{
			vertex.ShaderStageCreateInfo,
			fragment.ShaderStageCreateInfo,
		},
		IsWireframe: true,
		DepthTest:   true,
		DepthWrite:  true,
	})
	if err != nil {
		return err
	}
	vr.context.Pipeline = pipeline
	return nil
}

func (vr *VulkanRenderer) Shutdown() error {
	context := vr.context
	if context.Device == nil {
		if context.Instance != nil {
			vk.DestroyInstance(context.Instance, context.Allocator)
			context.Instance = nil
		}
		return nil
	}
	device := context.Device.LogicalDevice
	vk.DeviceWaitIdle(device)

	// Destroy in the opposite order of creation.
	if len(vr.buffers) > 0 {
		core.LogWarn("vulkan renderer shutting down with %d live buffers", len(vr.buffers))
		for _, rb := range vr.buffers {
			vr.RenderBufferDestroy(rb)
		}
	}
	vr.releaseStaging()

	// Sync objects
	if context.ImageAvailableSemaphore != nil {
		vk.DestroySemaphore(device, context.ImageAvailableSemaphore, context.Allocator)
		context.ImageAvailableSemaphore = nil
	}
	if context.QueueCompleteSemaphore != nil {
		vk.DestroySemaphore(device, context.QueueCompleteSemaphore, context.Allocator)
		context.QueueCompleteSemaphore = nil
	}
	if context.InFlightFence != nil {
		context.InFlightFence.FenceDestroy(context)
		context.InFlightFence = nil
	}

	// Command buffers
	for _, cb := range []*VulkanCommandBuffer{context.GraphicsCommandBuffer, context.UploadCommandBuffer} {
		if cb != nil {
			cb.Free(context, context.Device.GraphicsCommandPool)
		}
	}
	context.GraphicsCommandBuffer = nil
	context.UploadCommandBuffer = nil

	if context.Pipeline != nil {
		context.Pipeline.Destroy(context)
		context.Pipeline = nil
	}
	if context.Descriptors != nil {
		context.Descriptors.Destroy(context)
		context.Descriptors = nil
	}

	// The swapchain owns its framebuffers.
	if context.Swapchain != nil {
		context.Swapchain.SwapchainDestroy(context)
		context.Swapchain = nil
	}
	if context.MainRenderpass != nil {
		context.MainRenderpass.RenderpassDestroy(context)
		context.MainRenderpass = nil
	}

	DeviceDestroy(context)
	context.Device = nil

	if context.Surface != nil {
		vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
		context.Surface = nil
	}
	if context.debugMessenger != nil {
		vk.DestroyDebugReportCallback(context.Instance, context.debugMessenger, context.Allocator)
		context.debugMessenger = nil
	}
	vk.DestroyInstance(context.Instance, context.Allocator)
	context.Instance = nil

	vr.initialized = false
	core.LogInfo("Vulkan renderer shut down.")
	return nil
}

func (vr *VulkanRenderer) Resized(width, height uint32) error {
	// Update the "framebuffer size generation", a counter which indicates when the
	// framebuffer size has been updated.
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++

	core.LogInfo("Vulkan renderer backend->resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
	return nil
}

func (vr *VulkanRenderer) ResetCommands() error {
	if !vr.initialized {
		return core.ErrBackendNotReady
	}
	if vr.recordingUploads {
		return core.ErrFrameInProgress
	}
	cb := vr.context.UploadCommandBuffer
	if err := cb.Reset(); err != nil {
		return err
	}
	if err := cb.Begin(true, false, false); err != nil {
		return err
	}
	vr.recordingUploads = true
	return nil
}

func (vr *VulkanRenderer) SubmitCommands() error {
	if !vr.recordingUploads {
		return core.ErrNoFrameInProgress
	}
	vr.recordingUploads = false
	err := vr.context.UploadCommandBuffer.Submit(vr.context.Device.GraphicsQueue)
	vr.releaseStaging()
	return err
}

func (vr *VulkanRenderer) BeginFrame(deltaTime float64) error {
	if !vr.initialized {
		return core.ErrBackendNotReady
	}
	if vr.framing {
		return core.ErrFrameInProgress
	}
	context := vr.context

	// Check if recreating swap chain and boot out.
	if context.RecreatingSwapchain {
		return core.ErrSwapchainBooting
	}

	// Check if the framebuffer has been resized. If so, a new swapchain must be created.
	if context.FramebufferSizeGeneration != context.FramebufferSizeLastGeneration {
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		core.LogInfo("Resized, booting.")
		return core.ErrSwapchainBooting
	}

	// Wait for the previous frame to complete.
	if err := context.InFlightFence.FenceWait(context, VULKAN_WAIT_TIMEOUT); err != nil {
		return err
	}

	imageIndex, err := context.Swapchain.SwapchainAcquireNextImageIndex(context, VULKAN_WAIT_TIMEOUT, context.ImageAvailableSemaphore, nil)
	if err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			context.FramebufferSizeGeneration++
		}
		return err
	}
	context.ImageIndex = imageIndex

	// Begin recording commands.
	commandBuffer := context.GraphicsCommandBuffer
	if err := commandBuffer.Reset(); err != nil {
		return err
	}
	if err := commandBuffer.Begin(true, false, false); err != nil {
		return err
	}

	context.MainRenderpass.RenderpassBegin(commandBuffer, context.Swapchain.Framebuffers[imageIndex].Handle, context.Swapchain.Extent)
	context.Pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)

	// Default to the full framebuffer until a view sets its own rectangle.
	vr.SetViewport(metadata.Viewport{
		Width:    float32(context.Swapchain.Extent.Width),
		Height:   float32(context.Swapchain.Extent.Height),
		MaxDepth: 1,
	})

	vr.framing = true
	return nil
}

func (vr *VulkanRenderer) EndFrame(deltaTime float64) error {
	if !vr.framing {
		return core.ErrNoFrameInProgress
	}
	vr.framing = false
	context := vr.context
	commandBuffer := context.GraphicsCommandBuffer

	context.MainRenderpass.RenderpassEnd(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	if err := context.InFlightFence.FenceReset(context); err != nil {
		return err
	}

	// The submission waits for the acquired image and signals presentation.
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{context.QueueCompleteSemaphore},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{context.ImageAvailableSemaphore},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}
	if err := vkError("vkQueueSubmit", vk.QueueSubmit(context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, context.InFlightFence.Handle)); err != nil {
		return err
	}
	commandBuffer.UpdateSubmitted()

	// Give the image back to the swapchain.
	err := context.Swapchain.SwapchainPresent(context, context.Device.PresentQueue, context.QueueCompleteSemaphore, context.ImageIndex)
	if errors.Is(err, core.ErrSwapchainBooting) {
		// Recreated on the next BeginFrame.
		context.FramebufferSizeGeneration++
		err = nil
	}
	if err != nil {
		return err
	}

	// Single frame in flight: the next frame reuses the same command buffer.
	if err := context.InFlightFence.FenceWait(context, VULKAN_WAIT_TIMEOUT); err != nil {
		return err
	}
	vr.FrameNumber++
	return nil
}

func (vr *VulkanRenderer) SetViewport(viewport metadata.Viewport) {
	cb := vr.context.GraphicsCommandBuffer
	if cb == nil || !cb.Recording() {
		return
	}
	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{{
		X:        viewport.X,
		Y:        viewport.Y,
		Width:    viewport.Width,
		Height:   viewport.Height,
		MinDepth: viewport.MinDepth,
		MaxDepth: viewport.MaxDepth,
	}})
	vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{scissorFor(viewport, vr.context.Swapchain.Extent)})
}

// scissorFor clips a viewport to the framebuffer.
func scissorFor(viewport metadata.Viewport, extent vk.Extent2D) vk.Rect2D {
	x := clampUint32(uint32(max(viewport.X, 0)), 0, extent.Width)
	y := clampUint32(uint32(max(viewport.Y, 0)), 0, extent.Height)
	w := clampUint32(uint32(max(viewport.Width, 0)), 0, extent.Width-x)
	h := clampUint32(uint32(max(viewport.Height, 0)), 0, extent.Height-y)
	return vk.Rect2D{
		Offset: vk.Offset2D{X: int32(x), Y: int32(y)},
		Extent: vk.Extent2D{Width: w, Height: h},
	}
}

func (vr *VulkanRenderer) DrawIndexed(draw *metadata.DrawCall) error {
	if !vr.framing {
		return core.ErrNoFrameInProgress
	}
	if draw == nil || draw.Mesh == nil {
		return core.ErrInvalidBuffer
	}
	vertices, ok := vr.lookup(draw.Mesh.VertexBuffer)
	if !ok {
		return core.ErrInvalidBuffer
	}
	indices, ok := vr.lookup(draw.Mesh.IndexBuffer)
	if !ok {
		return core.ErrInvalidBuffer
	}
	constants, ok := vr.lookup(draw.Mesh.ConstantBuffer)
	if !ok {
		return core.ErrInvalidBuffer
	}
	if draw.Slot >= draw.Mesh.ConstantBuffer.SlotCount {
		return core.ErrSlotOutOfRange
	}

	cb := vr.context.GraphicsCommandBuffer.Handle
	vk.CmdBindVertexBuffers(cb, 0, 1, []vk.Buffer{vertices.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(cb, indices.Handle, 0, vk.IndexTypeUint32)

	offset := uint32(uint64(draw.Slot) * draw.Mesh.ConstantBuffer.SlotSize)
	vk.CmdBindDescriptorSets(cb, vk.PipelineBindPointGraphics, vr.context.Pipeline.PipelineLayout,
		0, 1, []vk.DescriptorSet{constants.Set}, 1, []uint32{offset})

	vk.CmdDrawIndexed(cb, draw.IndexCount, 1, draw.StartIndex, draw.BaseVertex, 0)
	return nil
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	context := vr.context

	// Detect if the window is too small to be drawn to
	if vr.cachedFramebufferWidth == 0 || vr.cachedFramebufferHeight == 0 {
		core.LogDebug("recreate_swapchain called when window is < 1 in a dimension. Booting.")
		return core.ErrSwapchainBooting
	}

	context.RecreatingSwapchain = true
	defer func() { context.RecreatingSwapchain = false }()

	if err := vkError("vkDeviceWaitIdle", vk.DeviceWaitIdle(context.Device.LogicalDevice)); err != nil {
		return err
	}

	sc, err := context.Swapchain.SwapchainRecreate(context, vr.cachedFramebufferWidth, vr.cachedFramebufferHeight)
	if err != nil {
		return err
	}
	context.Swapchain = sc

	// Sync the framebuffer size with the cached sizes.
	context.FramebufferWidth = sc.Extent.Width
	context.FramebufferHeight = sc.Extent.Height
	context.FramebufferSizeLastGeneration = context.FramebufferSizeGeneration

	return regenerateFramebuffers(context, sc, context.MainRenderpass)
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
