package vdp

import "github.com/vkngwrapper/core/v2/core1_0"

// AllocateSetCallback is called after a descriptor set has been successfully allocated from a pool
type AllocateSetCallback func(
	pool *Pool,
	layout core1_0.DescriptorSetLayout,
	set core1_0.DescriptorSet,
	userData interface{},
)

// PurgeCallback is called after a pool has been successfully purged. releasedSets is the
// number of sets that were outstanding before the purge.
type PurgeCallback func(
	pool *Pool,
	releasedSets int,
	userData interface{},
)

// SetCallbackOptions is an optional set of callbacks that will be executed as sets are
// allocated from and released back to a Pool
type SetCallbackOptions struct {
	Allocate AllocateSetCallback
	Purge    PurgeCallback
	UserData interface{}
}

type setCallbacks struct {
	Callbacks *SetCallbackOptions
	Pool      *Pool
}

func (c *setCallbacks) Allocate(layout core1_0.DescriptorSetLayout, set core1_0.DescriptorSet) {
	if c.Callbacks != nil && c.Callbacks.Allocate != nil {
		c.Callbacks.Allocate(c.Pool, layout, set, c.Callbacks.UserData)
	}
}

func (c *setCallbacks) Purge(releasedSets int) {
	if c.Callbacks != nil && c.Callbacks.Purge != nil {
		c.Callbacks.Purge(c.Pool, releasedSets, c.Callbacks.UserData)
	}
}
