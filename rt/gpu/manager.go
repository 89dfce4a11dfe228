package gpu

import (
	"fmt"

	"github.com/gekko3d/rtaccel"
	"github.com/gekko3d/rtaccel/rt/bvh"
	"github.com/gekko3d/rtaccel/rt/core"

	"github.com/cogentcore/webgpu/wgpu"
)

// Buffer is the part of *wgpu.Buffer the manager needs.
type Buffer interface {
	GetSize() uint64
	Release()
}

// Allocator creates and fills storage buffers.
type Allocator interface {
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (Buffer, error)
	WriteBuffer(buf Buffer, offset uint64, data []byte)
}

// BufferManager keeps the five acceleration structure buffers on the GPU,
// growing them as builds get larger.
type BufferManager struct {
	alloc Allocator

	TrianglesBuf  Buffer
	AttributesBuf Buffer
	BVHNodesBuf   Buffer
	InstancesBuf  Buffer
	TLASNodesBuf  Buffer
}

func NewBufferManager(device *wgpu.Device) *BufferManager {
	return NewBufferManagerWith(&deviceAllocator{device: device})
}

func NewBufferManagerWith(alloc Allocator) *BufferManager {
	return &BufferManager{alloc: alloc}
}

// Upload writes a build's buffers. It reports whether any buffer was
// recreated, in which case bind groups referencing them must be rebuilt.
func (m *BufferManager) Upload(b rtaccel.Buffers) (bool, error) {
	uploads := []struct {
		name   string
		buf    *Buffer
		data   []byte
		record int
	}{
		{"TrianglesBuf", &m.TrianglesBuf, b.Triangles, bvh.TriangleGeometrySize},
		{"AttributesBuf", &m.AttributesBuf, b.Attributes, bvh.TriangleAttributeSize},
		{"BVHNodesBuf", &m.BVHNodesBuf, b.BVHNodes, bvh.BVHNodeSize},
		{"InstancesBuf", &m.InstancesBuf, b.Instances, core.InstanceSize},
		{"TLASNodesBuf", &m.TLASNodesBuf, b.TLASNodes, bvh.TLASNodeSize},
	}

	recreated := false
	for _, u := range uploads {
		data := u.data
		// Zero sized storage buffers cannot be bound.
		if len(data) == 0 {
			data = make([]byte, u.record)
		}
		changed, err := m.ensureBuffer(u.name, u.buf, data, wgpu.BufferUsageStorage)
		if err != nil {
			return recreated, err
		}
		recreated = recreated || changed
	}
	return recreated, nil
}

func (m *BufferManager) ensureBuffer(name string, buf *Buffer, data []byte, usage wgpu.BufferUsage) (bool, error) {
	neededSize := uint64(len(data))
	if neededSize%4 != 0 {
		neededSize += 4 - (neededSize % 4)
	}

	current := *buf
	if current == nil || current.GetSize() < neededSize {
		if current != nil {
			current.Release()
			*buf = nil
		}

		newBuf, err := m.alloc.CreateBuffer(name, neededSize, usage|wgpu.BufferUsageCopyDst)
		if err != nil {
			return false, fmt.Errorf("creating %s (%d bytes): %w", name, neededSize, err)
		}
		*buf = newBuf
		m.alloc.WriteBuffer(*buf, 0, data)
		return true, nil
	}

	m.alloc.WriteBuffer(*buf, 0, data)
	return false, nil
}

func (m *BufferManager) Release() {
	for _, buf := range []*Buffer{&m.TrianglesBuf, &m.AttributesBuf, &m.BVHNodesBuf, &m.InstancesBuf, &m.TLASNodesBuf} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
}

type deviceAllocator struct {
	device *wgpu.Device
}

func (a *deviceAllocator) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (Buffer, error) {
	buf, err := a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (a *deviceAllocator) WriteBuffer(buf Buffer, offset uint64, data []byte) {
	a.device.GetQueue().WriteBuffer(buf.(*wgpu.Buffer), offset, data)
}
