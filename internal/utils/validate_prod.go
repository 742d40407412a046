//go:build !debug_vdp

package utils

// DebugCheckNotNil panics if value is nil. This method no-ops unless the debug_vdp build tag is present.
func DebugCheckNotNil(value any, name string) {
}

// DebugAssert evaluates check and panics with message if it returns false. The check is never
// evaluated unless the debug_vdp build tag is present.
func DebugAssert(check func() bool, message string) {
}
