package vdp

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/arsenal/memutils"
	"github.com/vkngwrapper/arsenal/vdp/internal/utils"
	"github.com/vkngwrapper/arsenal/vdp/internal/vulkan"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// Pool hands out descriptor sets from a single native descriptor pool with a fixed capacity.
//
// Sets cannot be freed individually. All sets issued by a pool are released at once by Purge,
// after which they must not be bound or written to by the caller. The pool does not know
// which sets are still referenced by in-flight work: guaranteeing that none are before
// calling Purge or Destroy is the caller's responsibility.
type Pool struct {
	logger         *slog.Logger
	device         core1_0.Device
	descriptorPool *vulkan.DescriptorPool
	callbacks      setCallbacks
	createFlags    PoolCreateFlags

	mutex      utils.OptionalMutex
	generation atomic.Uint64
	destroyed  bool
	name       string

	layoutCounts         *swiss.Map[core1_0.DescriptorSetLayout, int]
	totalAllocations     int
	exhaustedAllocations int
	purges               int
}

// Allocate allocates a single descriptor set of the provided layout. The layout must have
// been created from the same device as the pool.
//
// If the pool does not have enough capacity remaining, the returned error will be marked
// with ErrPoolExhausted. The pool is never purged automatically.
func (p *Pool) Allocate(layout core1_0.DescriptorSetLayout) (*Set, common.VkResult, error) {
	p.logger.Debug("Pool::Allocate")

	set, res, err := p.allocate(layout)
	if err != nil {
		return nil, res, err
	}

	p.callbacks.Allocate(layout, set.descriptorSet)
	return set, res, nil
}

func (p *Pool) allocate(layout core1_0.DescriptorSetLayout) (*Set, common.VkResult, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.destroyed {
		return nil, core1_0.VKErrorUnknown, ErrPoolDestroyed
	}

	if layout == nil {
		return nil, core1_0.VKErrorUnknown, errors.Wrap(ErrInvariantViolation, "invalid vulkan descriptor set layout: nil")
	}
	utils.DebugAssert(func() bool {
		return layout.DeviceHandle() == p.device.Handle()
	}, "descriptor set layout was created from a different device than the descriptor pool")

	set, res, err := allocateSet(p.device, p, layout)
	if err != nil && vulkan.IsPoolExhaustion(res) {
		p.exhaustedAllocations++
		p.logger.Warn("descriptor pool exhausted",
			slog.String("name", p.name),
			slog.Int("allocatedSets", p.descriptorPool.AllocatedSets()),
			slog.Int("maxSets", p.descriptorPool.MaxSets()),
		)
		return nil, res, errors.Wrapf(errors.Mark(err, ErrPoolExhausted),
			"failed to allocate descriptor set with %d of %d sets allocated",
			p.descriptorPool.AllocatedSets(), p.descriptorPool.MaxSets())
	} else if errors.Is(err, vulkan.ErrNilHandle) {
		return nil, res, errors.Wrap(errors.Mark(err, ErrInvariantViolation), "invalid vulkan descriptor set")
	} else if err != nil {
		return nil, res, errors.Wrap(err, "failed to allocate descriptor set")
	}

	count, _ := p.layoutCounts.Get(layout)
	p.layoutCounts.Put(layout, count+1)
	p.totalAllocations++

	memutils.DebugValidate(p.descriptorPool)
	return set, res, nil
}

// Purge resets the native descriptor pool, returning the capacity used by every set allocated
// since the pool was created or last purged. Every one of those sets becomes stale: the caller
// must ensure none of them are still in use by pending work.
//
// If vulkan fails to reset the pool, the returned error is marked with ErrResourceReset and
// the pool should be destroyed.
func (p *Pool) Purge() (common.VkResult, error) {
	p.logger.Debug("Pool::Purge")

	released, res, err := p.purge()
	if err != nil {
		return res, err
	}

	p.callbacks.Purge(released)
	return res, nil
}

func (p *Pool) purge() (int, common.VkResult, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.destroyed {
		return 0, core1_0.VKErrorUnknown, ErrPoolDestroyed
	}

	released := p.descriptorPool.AllocatedSets()
	res, err := p.descriptorPool.Reset()
	if err != nil {
		p.logger.Error("failed to reset descriptor pool",
			slog.String("name", p.name),
			slog.String("result", res.String()),
		)
		return 0, res, errors.Wrap(errors.Mark(err, ErrResourceReset), "failed to purge descriptor pool")
	}

	p.generation.Add(1)
	p.layoutCounts.Clear()
	p.purges++

	memutils.DebugValidate(p.descriptorPool)
	return released, res, nil
}

// Destroy releases the native descriptor pool. It is not necessary to Purge first. Every set
// issued by the pool becomes stale, and all further calls on the pool fail with ErrPoolDestroyed.
func (p *Pool) Destroy() error {
	p.logger.Debug("Pool::Destroy")

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.destroyed {
		return ErrPoolDestroyed
	}

	p.descriptorPool.Destroy()
	p.destroyed = true
	p.generation.Add(1)
	p.layoutCounts.Clear()

	return nil
}

// Generation is incremented every time the pool is purged or destroyed. Sets carry the
// generation they were allocated in.
func (p *Pool) Generation() uint64 {
	return p.generation.Load()
}

func (p *Pool) SetName(name string) {
	p.logger.Debug("Pool::SetName")

	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.name = name
}

func (p *Pool) Name() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.name
}

func (p *Pool) Flags() PoolCreateFlags {
	return p.createFlags
}

// MaxSets is the number of sets that may be allocated between purges
func (p *Pool) MaxSets() int {
	return p.descriptorPool.MaxSets()
}

// PoolSizes returns a copy of the per-type descriptor capacity of the pool
func (p *Pool) PoolSizes() []core1_0.DescriptorPoolSize {
	return p.descriptorPool.PoolSizes()
}

// AllocatedSets is the number of sets allocated since the pool was created or last purged
func (p *Pool) AllocatedSets() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.descriptorPool.AllocatedSets()
}

// AvailableSets is the number of sets that can be allocated before the configured total is reached
func (p *Pool) AvailableSets() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.descriptorPool.MaxSets() - p.descriptorPool.AllocatedSets()
}

// LayoutAllocationCount is the number of sets of the provided layout allocated since the pool
// was created or last purged
func (p *Pool) LayoutAllocationCount(layout core1_0.DescriptorSetLayout) int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	count, _ := p.layoutCounts.Get(layout)
	return count
}

func (p *Pool) Statistics() Statistics {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.statisticsAfterLock()
}

func (p *Pool) statisticsAfterLock() Statistics {
	return Statistics{
		MaxSets:              p.descriptorPool.MaxSets(),
		AllocatedSets:        p.descriptorPool.AllocatedSets(),
		LayoutCount:          p.layoutCounts.Count(),
		TotalAllocations:     p.totalAllocations,
		ExhaustedAllocations: p.exhaustedAllocations,
		Purges:               p.purges,
	}
}

// BuildStatsString returns a json document describing the pool's capacity and usage
func (p *Pool) BuildStatsString() string {
	p.logger.Debug("Pool::BuildStatsString")

	p.mutex.Lock()
	defer p.mutex.Unlock()

	stats := p.statisticsAfterLock()

	writer := jwriter.NewWriter()
	obj := writer.Object()

	obj.Name("Name").String(p.name)
	obj.Name("Flags").String(p.createFlags.String())
	obj.Name("Destroyed").Bool(p.destroyed)
	obj.Name("Generation").Int(int(p.generation.Load()))

	capacity := obj.Name("Capacity").Object()
	capacity.Name("MaxSets").Int(stats.MaxSets)
	sizes := capacity.Name("PoolSizes").Array()
	for _, size := range p.descriptorPool.PoolSizes() {
		sizeObj := sizes.Object()
		sizeObj.Name("Type").String(size.Type.String())
		sizeObj.Name("DescriptorCount").Int(size.DescriptorCount)
		sizeObj.End()
	}
	sizes.End()
	capacity.End()

	usage := obj.Name("Usage").Object()
	usage.Name("AllocatedSets").Int(stats.AllocatedSets)
	usage.Name("AvailableSets").Int(stats.AvailableSets())
	usage.Name("LayoutCount").Int(stats.LayoutCount)
	usage.Name("TotalAllocations").Int(stats.TotalAllocations)
	usage.Name("ExhaustedAllocations").Int(stats.ExhaustedAllocations)
	usage.Name("Purges").Int(stats.Purges)
	usage.End()

	obj.End()

	return string(writer.Bytes())
}
