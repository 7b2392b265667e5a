package vulkan

/**
 * @brief Max number of constant buffers, one descriptor set each.
 * @todo TODO: grow the descriptor pool instead of failing once it is exhausted.
 */
const VULKAN_MAX_DESCRIPTOR_SETS uint32 = 4096

/** @brief The binding of the per-object constants in the vertex and fragment shaders. */
const VULKAN_OBJECT_CONSTANTS_BINDING uint32 = 0

/** @brief Smallest slot stride of a constant buffer, whatever the device allows. */
const VULKAN_MIN_UNIFORM_ALIGNMENT uint64 = 256

/** @brief How long fence and acquire waits may block, in nanoseconds. */
const VULKAN_WAIT_TIMEOUT uint64 = 5_000_000_000
