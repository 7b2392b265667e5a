package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestAlignUp(t *testing.T) {
	tests := []struct {
		size, alignment, expected uint64
	}{
		{80, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{80, 0, 80},
		{0, 64, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, alignUp(tt.size, tt.alignment))
	}
}

func TestSafeStrings(t *testing.T) {
	assert.Equal(t, "\x00", VulkanSafeString(""))
	assert.Equal(t, "main\x00", VulkanSafeString("main"))
	assert.Equal(t, "main\x00", VulkanSafeString("main\x00"))

	in := []string{"a", "b\x00"}
	assert.Equal(t, []string{"a\x00", "b\x00"}, VulkanSafeStrings(in))
	assert.Equal(t, "a", in[0], "input is left alone")
}

func TestFindFirstZero(t *testing.T) {
	assert.Equal(t, 3, FindFirstZeroInByteArray([]byte{'a', 'b', 'c', 0, 'd'}))
	assert.Equal(t, 2, FindFirstZeroInByteArray([]byte{'a', 'b'}))
}

func TestResultStrings(t *testing.T) {
	assert.Equal(t, "VK_ERROR_OUT_OF_DATE_KHR", VulkanResultString(vk.ErrorOutOfDate, false))
	assert.Contains(t, VulkanResultString(vk.ErrorDeviceLost, true), "has been lost")
	assert.Equal(t, "VkResult(-12345)", VulkanResultString(vk.Result(-12345), false))
	assert.True(t, VulkanResultIsSuccess(vk.Suboptimal))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorOutOfDate))
	assert.NoError(t, vkError("vkCall", vk.Success))
	assert.ErrorContains(t, vkError("vkCall", vk.ErrorDeviceLost), "vkCall failed with VK_ERROR_DEVICE_LOST")
}

func TestClampUint32(t *testing.T) {
	assert.Equal(t, uint32(5), clampUint32(1, 5, 10))
	assert.Equal(t, uint32(10), clampUint32(11, 5, 10))
	assert.Equal(t, uint32(7), clampUint32(7, 5, 10))
}
