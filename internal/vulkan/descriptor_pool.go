package vulkan

import (
	"github.com/pkg/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/driver"
)

// ErrNilHandle is returned when vulkan reports success but hands back a nil object
var ErrNilHandle = errors.New("vulkan returned a nil handle alongside a successful result")

// DescriptorPool owns a single native descriptor pool and keeps track of how many sets
// have been handed out of it since it was created or last reset. It is not synchronized.
type DescriptorPool struct {
	device              core1_0.Device
	pool                core1_0.DescriptorPool
	allocationCallbacks *driver.AllocationCallbacks

	maxSets   int
	poolSizes []core1_0.DescriptorPoolSize
	allocated int
}

// NewDescriptorPool creates the native pool. The pool never carries
// DescriptorPoolCreateFreeDescriptorSet: sets are only ever released in bulk through Reset.
func NewDescriptorPool(
	device core1_0.Device,
	allocationCallbacks *driver.AllocationCallbacks,
	maxSets int,
	poolSizes []core1_0.DescriptorPoolSize,
) (*DescriptorPool, common.VkResult, error) {
	sizes := make([]core1_0.DescriptorPoolSize, len(poolSizes))
	copy(sizes, poolSizes)

	pool, res, err := device.CreateDescriptorPool(allocationCallbacks, core1_0.DescriptorPoolCreateInfo{
		Flags:     0,
		MaxSets:   maxSets,
		PoolSizes: sizes,
	})
	if err != nil {
		return nil, res, err
	}
	if pool == nil {
		return nil, core1_0.VKErrorUnknown, errors.Wrap(ErrNilHandle, "descriptor pool")
	}

	return &DescriptorPool{
		device:              device,
		pool:                pool,
		allocationCallbacks: allocationCallbacks,
		maxSets:             maxSets,
		poolSizes:           sizes,
	}, res, nil
}

func (p *DescriptorPool) VulkanDescriptorPool() core1_0.DescriptorPool {
	return p.pool
}

func (p *DescriptorPool) MaxSets() int {
	return p.maxSets
}

func (p *DescriptorPool) PoolSizes() []core1_0.DescriptorPoolSize {
	sizes := make([]core1_0.DescriptorPoolSize, len(p.poolSizes))
	copy(sizes, p.poolSizes)
	return sizes
}

func (p *DescriptorPool) AllocatedSets() int {
	return p.allocated
}

// AllocateSet allocates a single set of the provided layout. When the configured set count has
// already been reached, the driver is not consulted and VKErrorOutOfPoolMemory is returned.
func (p *DescriptorPool) AllocateSet(layout core1_0.DescriptorSetLayout) (core1_0.DescriptorSet, common.VkResult, error) {
	if p.allocated >= p.maxSets {
		return nil, core1_1.VkErrorOutOfPoolMemory, core1_1.VkErrorOutOfPoolMemory.ToError()
	}

	sets, res, err := p.device.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: p.pool,
		SetLayouts:     []core1_0.DescriptorSetLayout{layout},
	})
	if err != nil {
		return nil, res, err
	}
	if len(sets) != 1 || sets[0] == nil {
		return nil, core1_0.VKErrorUnknown, errors.Wrapf(ErrNilHandle, "descriptor set (received %d sets)", len(sets))
	}

	p.allocated++
	return sets[0], res, nil
}

// Reset returns every set allocated from this pool to the pool. On failure the allocation
// count is left untouched, since the state of the native pool is unknown.
func (p *DescriptorPool) Reset() (common.VkResult, error) {
	res, err := p.pool.Reset(core1_0.DescriptorPoolResetFlags(0))
	if err != nil {
		return res, err
	}

	p.allocated = 0
	return res, nil
}

func (p *DescriptorPool) Destroy() {
	p.pool.Destroy(p.allocationCallbacks)
	p.pool = nil
	p.allocated = 0
}

func (p *DescriptorPool) Validate() error {
	if p.pool == nil {
		return errors.New("descriptor pool has been destroyed")
	}
	if p.allocated < 0 || p.allocated > p.maxSets {
		return errors.Errorf("descriptor pool has %d allocated sets, but the capacity is %d", p.allocated, p.maxSets)
	}

	return nil
}

// IsPoolExhaustion reports whether a vulkan result indicates the pool could not satisfy
// an allocation from its remaining capacity
func IsPoolExhaustion(res common.VkResult) bool {
	return res == core1_1.VkErrorOutOfPoolMemory || res == core1_0.VKErrorFragmentedPool
}
