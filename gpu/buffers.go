//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sdfcanvas"
)

// minBufferSize is the smallest allocation of a growable buffer.
const minBufferSize = 4096

// viewportUniformSize is the byte size of the Viewport uniform:
// origin (vec2<f32>) + size (vec2<f32>).
const viewportUniformSize = 16

// growableBuffer is a device buffer reallocated to the next power of two
// when an upload does not fit. Contents are replaced on every upload.
type growableBuffer struct {
	label string
	usage gputypes.BufferUsage
	buf   hal.Buffer
	size  uint64
}

// upload writes data, growing the buffer first if needed. It reports
// whether the buffer was reallocated, which invalidates bind groups that
// reference it.
func (b *growableBuffer) upload(device hal.Device, queue hal.Queue, data []byte) (bool, error) {
	need := uint64(len(data))
	grown := false
	if b.buf == nil || need > b.size {
		size := uint64(minBufferSize)
		for size < need {
			size *= 2
		}
		b.destroy(device)
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: b.label,
			Size:  size,
			Usage: b.usage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return false, fmt.Errorf("create %s: %w", b.label, err)
		}
		b.buf, b.size = buf, size
		grown = true
		sdfcanvas.Logger().Debug("gpu: buffer allocated", "label", b.label, "size", size)
	}
	if need > 0 {
		queue.WriteBuffer(b.buf, 0, data)
	}
	return grown, nil
}

func (b *growableBuffer) destroy(device hal.Device) {
	if b.buf != nil {
		device.DestroyBuffer(b.buf)
		b.buf, b.size = nil, 0
	}
}

// encodeViewport writes the Viewport uniform for f into dst.
func encodeViewport(dst []byte, f *sdfcanvas.Frame) []byte {
	dst = dst[:0]
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f.Origin.X))
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f.Origin.Y))
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(f.Width)))
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(f.Height)))
	return dst
}

// vertexLayout matches VertexInput in sdf_canvas.wgsl:
//
//	location 0: position (vec2<f32>)
//	location 1: primitive index (f32)
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: sdfcanvas.VertexSize,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32, Offset: 8, ShaderLocation: 1},
			},
		},
	}
}
