package vdp

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/arsenal/vdp/internal/utils"
	"github.com/vkngwrapper/arsenal/vdp/internal/vulkan"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"golang.org/x/exp/slog"
)

// PoolCreateFlags indicate specific pool behaviors to activate or deactivate
type PoolCreateFlags int32

var poolCreateFlagsMapping = common.NewFlagStringMapping[PoolCreateFlags]()

func (f PoolCreateFlags) Register(str string) {
	poolCreateFlagsMapping.Register(f, str)
}
func (f PoolCreateFlags) String() string {
	return poolCreateFlagsMapping.FlagsToString(f)
}

const (
	// PoolCreateExternallySynchronized ensures that the pool will not be synchronized internally.
	// The consumer must guarantee that Allocate, Purge, and Destroy are called from only one
	// goroutine at a time, but performance may improve because the internal mutex is not used.
	PoolCreateExternallySynchronized PoolCreateFlags = 1 << iota
)

func init() {
	PoolCreateExternallySynchronized.Register("PoolCreateExternallySynchronized")
}

const (
	// DefaultMaxSets is the number of sets a pool can hand out between purges when
	// CreateOptions.MaxSets is left at 0
	DefaultMaxSets int = 1024
	// DefaultDescriptorCount is the number of descriptors of each type in DefaultPoolSizes
	DefaultDescriptorCount int = 256
)

// DefaultPoolSizes returns the per-type descriptor capacity used when CreateOptions.PoolSizes is
// left empty: DefaultDescriptorCount each of uniform buffers, storage buffers, combined image
// samplers and storage images.
//
// The sum of these is allowed to exceed DefaultMaxSets. Pools are expected to be purged
// frequently, so there is little return in raising the counts.
func DefaultPoolSizes() []core1_0.DescriptorPoolSize {
	return []core1_0.DescriptorPoolSize{
		{Type: core1_0.DescriptorTypeUniformBuffer, DescriptorCount: DefaultDescriptorCount},
		{Type: core1_0.DescriptorTypeStorageBuffer, DescriptorCount: DefaultDescriptorCount},
		{Type: core1_0.DescriptorTypeCombinedImageSampler, DescriptorCount: DefaultDescriptorCount},
		{Type: core1_0.DescriptorTypeStorageImage, DescriptorCount: DefaultDescriptorCount},
	}
}

// CreateOptions contains optional settings when creating a pool
type CreateOptions struct {
	// Flags indicates specific pool behaviors to activate or deactivate
	Flags PoolCreateFlags
	// MaxSets is the number of sets that may be allocated between purges. DefaultMaxSets is
	// used if it is left at 0.
	MaxSets int
	// PoolSizes is the number of descriptors of each type available between purges.
	// DefaultPoolSizes is used if it is left empty. Each type may appear at most once.
	PoolSizes []core1_0.DescriptorPoolSize

	// AllocationCallbacks is an optional set of callbacks that will be passed to vulkan when
	// the native descriptor pool is created and destroyed
	AllocationCallbacks *driver.AllocationCallbacks
	// Callbacks is an optional set of callbacks executed when sets are allocated or purged
	Callbacks *SetCallbackOptions

	// Name is used in log output and BuildStatsString
	Name string
}

// New creates a Pool that allocates descriptor sets from device. The device is borrowed: it
// must outlive the pool and is never destroyed by it.
//
// logger - The logger that pool operations will be traced to, must not be nil
//
// device - The Device that the native descriptor pool will be created from
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, device core1_0.Device, options CreateOptions) (*Pool, common.VkResult, error) {
	if device == nil {
		return nil, core1_0.VKErrorUnknown, errors.Wrap(ErrInvariantViolation, "invalid vulkan device: nil")
	}

	maxSets := options.MaxSets
	if maxSets == 0 {
		maxSets = DefaultMaxSets
	}

	poolSizes := options.PoolSizes
	if len(poolSizes) == 0 {
		poolSizes = DefaultPoolSizes()
	}

	err := validateCapacity(maxSets, poolSizes)
	if err != nil {
		return nil, core1_0.VKErrorUnknown, err
	}

	descriptorPool, res, err := vulkan.NewDescriptorPool(device, options.AllocationCallbacks, maxSets, poolSizes)
	if errors.Is(err, vulkan.ErrNilHandle) {
		return nil, res, errors.Wrap(errors.Mark(err, ErrInvariantViolation), "invalid vulkan descriptor pool")
	} else if err != nil {
		return nil, res, errors.Wrapf(errors.Mark(err, ErrResourceCreation), "failed to create descriptor pool with %d sets", maxSets)
	}

	pool := &Pool{
		logger:         logger,
		device:         device,
		descriptorPool: descriptorPool,
		createFlags:    options.Flags,
		name:           options.Name,
		mutex: utils.OptionalMutex{
			UseMutex: options.Flags&PoolCreateExternallySynchronized == 0,
		},
		layoutCounts: swiss.NewMap[core1_0.DescriptorSetLayout, int](16),
	}
	pool.callbacks = setCallbacks{
		Callbacks: options.Callbacks,
		Pool:      pool,
	}

	logger.Debug("Pool::New",
		slog.String("name", pool.name),
		slog.Int("maxSets", maxSets),
		slog.Int("poolSizes", len(poolSizes)),
	)

	return pool, res, nil
}

func validateCapacity(maxSets int, poolSizes []core1_0.DescriptorPoolSize) error {
	if maxSets < 0 {
		return errors.Newf("vdp.CreateOptions.MaxSets must be positive, but was %d", maxSets)
	}

	for i, size := range poolSizes {
		if size.DescriptorCount <= 0 {
			return errors.Newf("vdp.CreateOptions.PoolSizes[%d] has descriptor count %d for %s, which must be positive",
				i, size.DescriptorCount, size.Type)
		}

		for j := 0; j < i; j++ {
			if poolSizes[j].Type == size.Type {
				return errors.Newf("vdp.CreateOptions.PoolSizes lists %s at both index %d and %d", size.Type, j, i)
			}
		}
	}

	return nil
}
