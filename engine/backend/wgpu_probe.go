package backend

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// ProbeResult holds the GPU handles secured by a successful capability
// probe. The device and queue are reused for surface configuration so the
// probe does not acquire resources that are immediately thrown away.
type ProbeResult struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
}

// Release releases the held GPU handles in reverse acquisition order.
func (r *ProbeResult) Release() {
	if r.Device != nil {
		r.Device.Release()
		r.Device = nil
	}
	if r.Adapter != nil {
		r.Adapter.Release()
		r.Adapter = nil
	}
	if r.Instance != nil {
		r.Instance.Release()
		r.Instance = nil
	}
	r.Queue = nil
}

// WGPUProbe returns the capability probe for the WGPU backend: create an
// instance, request an adapter, then request a device. Any handle acquired
// before a failure is released before the error is reported, so a failed
// probe leaves nothing partially committed.
//
// Parameters:
//   - forceFallbackAdapter: if true, requests a software/fallback adapter
//     (useful on virtualized hardware)
func WGPUProbe(forceFallbackAdapter bool) Probe {
	return func() (*ProbeResult, error) {
		runtime.LockOSThread()

		instance := wgpu.CreateInstance(nil)
		if instance == nil {
			return nil, fmt.Errorf("failed to create wgpu instance")
		}

		adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			ForceFallbackAdapter: forceFallbackAdapter,
		})
		if err != nil {
			instance.Release()
			return nil, fmt.Errorf("failed to acquire wgpu adapter: %v", err)
		}

		device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
			Label: "Cadence Device",
			RequiredLimits: &wgpu.RequiredLimits{
				Limits: wgpu.DefaultLimits(),
			},
		})
		if err != nil {
			adapter.Release()
			instance.Release()
			return nil, fmt.Errorf("failed to acquire wgpu device: %v", err)
		}

		return &ProbeResult{
			Instance: instance,
			Adapter:  adapter,
			Device:   device,
			Queue:    device.GetQueue(),
		}, nil
	}
}
