//go:build debug_vdp

package utils

import "fmt"

// DebugCheckNotNil panics if value is nil. This method no-ops unless the debug_vdp build tag is present.
func DebugCheckNotNil(value any, name string) {
	if value == nil {
		panic(fmt.Sprintf("invalid vulkan %s: nil", name))
	}
}

// DebugAssert evaluates check and panics with message if it returns false. The check is never
// evaluated unless the debug_vdp build tag is present.
func DebugAssert(check func() bool, message string) {
	if !check() {
		panic(message)
	}
}
