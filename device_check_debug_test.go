//go:build debug_vdp

package vdp

import (
	"github.com/vkngwrapper/core/v2/mocks"
	"github.com/golang/mock/gomock"
)

// expectDeviceHandle gives a mock device a stable handle for the layout ownership check
func expectDeviceHandle(device *mocks.MockDevice) {
	device.EXPECT().Handle().Return(mocks.NewFakeDeviceHandle()).AnyTimes()
}

// newLayout creates a mock layout owned by device. expectDeviceHandle must have been called on device.
func newLayout(ctrl *gomock.Controller, device *mocks.MockDevice) *mocks.MockDescriptorSetLayout {
	layout := mocks.NewMockDescriptorSetLayout(ctrl)
	layout.EXPECT().DeviceHandle().Return(device.Handle()).AnyTimes()
	return layout
}
