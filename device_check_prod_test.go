//go:build !debug_vdp

package vdp

import (
	"github.com/vkngwrapper/core/v2/mocks"
	"github.com/golang/mock/gomock"
)

// Layout ownership is only checked under debug_vdp, so the mocks carry no handle expectations here

func expectDeviceHandle(device *mocks.MockDevice) {
}

func newLayout(ctrl *gomock.Controller, device *mocks.MockDevice) *mocks.MockDescriptorSetLayout {
	return mocks.NewMockDescriptorSetLayout(ctrl)
}
