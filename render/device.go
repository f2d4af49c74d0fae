// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoHALAccess is returned when a device provider does not expose the
// HAL capability interface needed for direct GPU resource creation.
var ErrNoHALAccess = errors.New("render: device provider does not expose HAL types")

// DeviceHandle provides GPU device access from the host application.
//
// The host (e.g. a gogpu.App) implements DeviceHandle and passes it to
// the session, which then shares the host's GPU device instead of
// creating its own. The session never owns the device; it only creates
// and destroys the resources it allocates on it (atlas texture, quad
// buffers, pipeline).
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a
// loop-specific name for the interface while staying compatible with the
// gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// HALFromProvider extracts the HAL device and queue from a device
// provider. The provider must additionally implement
//
//	HalDevice() any
//	HalQueue() any
//
// returning hal.Device and hal.Queue, the capability interface gogpu
// hosts expose for libraries that allocate GPU resources directly.
// Providers without it (including NullDeviceHandle) get ErrNoHALAccess.
func HALFromProvider(provider DeviceHandle) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrNoHALAccess
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, errors.New("render: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, errors.New("render: provider HalQueue is not hal.Queue")
	}
	return device, queue, nil
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for headless sessions where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
