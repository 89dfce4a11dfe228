package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Headless is a WebGPU device without a surface, enough to upload buffers.
type Headless struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
}

func NewHeadless() (*Headless, error) {
	h := &Headless{Instance: wgpu.CreateInstance(nil)}

	adapter, err := h.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		h.Release()
		return nil, err
	}
	h.Adapter = adapter

	h.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		h.Release()
		return nil, err
	}
	return h, nil
}

func (h *Headless) Release() {
	if h.Device != nil {
		h.Device.Release()
	}
	if h.Adapter != nil {
		h.Adapter.Release()
	}
	if h.Instance != nil {
		h.Instance.Release()
	}
}
