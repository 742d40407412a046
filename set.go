package vdp

import (
	"github.com/vkngwrapper/arsenal/vdp/internal/utils"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Set is a single descriptor set allocated from a Pool. It can only be created with
// Pool.Allocate and is valid until that pool is purged or destroyed. Discarding a Set does
// not return its capacity to the pool.
type Set struct {
	device        core1_0.Device
	pool          *Pool
	descriptorSet core1_0.DescriptorSet
	generation    uint64
}

func allocateSet(device core1_0.Device, pool *Pool, layout core1_0.DescriptorSetLayout) (*Set, common.VkResult, error) {
	utils.DebugCheckNotNil(device, "device")
	utils.DebugAssert(func() bool {
		return pool != nil && pool.descriptorPool != nil && pool.descriptorPool.VulkanDescriptorPool() != nil
	}, "invalid vulkan descriptor pool")
	utils.DebugCheckNotNil(layout, "descriptor set layout")

	descriptorSet, res, err := pool.descriptorPool.AllocateSet(layout)
	if err != nil {
		return nil, res, err
	}
	utils.DebugCheckNotNil(descriptorSet, "descriptor set")

	return &Set{
		device:        device,
		pool:          pool,
		descriptorSet: descriptorSet,
		generation:    pool.generation.Load(),
	}, res, nil
}

// DescriptorSet returns the native descriptor set, to be written to and bound by the caller.
// If the owning pool has been purged or destroyed since the set was allocated, ErrStaleSet
// is returned instead.
func (s *Set) DescriptorSet() (core1_0.DescriptorSet, error) {
	if !s.IsValid() {
		return nil, ErrStaleSet
	}

	return s.descriptorSet, nil
}

// IsValid returns false once the owning pool has been purged or destroyed
func (s *Set) IsValid() bool {
	return s.pool.generation.Load() == s.generation
}

// Generation is the pool generation the set was allocated in
func (s *Set) Generation() uint64 {
	return s.generation
}

// Pool returns the pool that issued the set
func (s *Set) Pool() *Pool {
	return s.pool
}

// Device returns the device the set was allocated from. Code writing descriptors into the set
// uses it to call UpdateDescriptorSets and to check that bound resources belong to the same device.
func (s *Set) Device() core1_0.Device {
	return s.device
}
