package vdp

import "github.com/cockroachdb/errors"

var (
	// ErrResourceCreation is marked on errors returned from New when vulkan could not create the
	// native descriptor pool
	ErrResourceCreation = errors.New("failed to create vulkan descriptor pool")
	// ErrPoolExhausted is marked on errors returned from Pool.Allocate when the pool has no capacity
	// remaining for the requested layout. Capacity can only be recovered with Pool.Purge.
	ErrPoolExhausted = errors.New("descriptor pool exhausted")
	// ErrResourceReset is marked on errors returned from Pool.Purge when vulkan failed to reset the
	// native pool. The pool is in an undefined state afterward.
	ErrResourceReset = errors.New("failed to reset vulkan descriptor pool")
	// ErrInvariantViolation indicates a nil handle where none should be
	ErrInvariantViolation = errors.New("descriptor pool invariant violated")
	// ErrStaleSet is returned when a Set is used after the Pool that issued it was purged or destroyed
	ErrStaleSet = errors.New("descriptor set was invalidated by a purge or destroy of its pool")
	// ErrPoolDestroyed is returned from any operation on a Pool after Destroy has been called
	ErrPoolDestroyed = errors.New("descriptor pool has been destroyed")
)
