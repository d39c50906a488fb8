//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sdfcanvas"
)

// Renderer errors.
var (
	// ErrDestroyed is returned when rendering with a destroyed Renderer.
	ErrDestroyed = errors.New("gpu: renderer destroyed")

	// ErrNoHAL is returned when a device provider does not expose HAL
	// device and queue objects.
	ErrNoHAL = errors.New("gpu: provider does not expose HAL types")
)

// DefaultFenceTimeout bounds how long Render waits for the GPU.
const DefaultFenceTimeout = 5 * time.Second

// TextureBinder supplies bind group 1 for textured draw groups. The bind
// group must be created against Renderer.TextureLayout with the texture
// view at binding 0 and a sampler (for example Renderer.Sampler) at
// binding 1.
type TextureBinder interface {
	BindGroup(tex sdfcanvas.TextureRef) (hal.BindGroup, bool)
}

// TextureBinderFunc adapts a function to TextureBinder.
type TextureBinderFunc func(tex sdfcanvas.TextureRef) (hal.BindGroup, bool)

// BindGroup implements TextureBinder.
func (f TextureBinderFunc) BindGroup(tex sdfcanvas.TextureRef) (hal.BindGroup, bool) {
	return f(tex)
}

// RendererOption configures a Renderer.
type RendererOption func(*rendererOptions)

type rendererOptions struct {
	format       gputypes.TextureFormat
	sampleCount  uint32
	fenceTimeout time.Duration
}

func defaultRendererOptions() rendererOptions {
	return rendererOptions{
		format:       gputypes.TextureFormatBGRA8UnormSrgb,
		sampleCount:  1,
		fenceTimeout: DefaultFenceTimeout,
	}
}

// WithTargetFormat sets the color format of render targets.
func WithTargetFormat(format gputypes.TextureFormat) RendererOption {
	return func(o *rendererOptions) {
		if format != gputypes.TextureFormatUndefined {
			o.format = format
		}
	}
}

// WithSampleCount enables multisampling. Anti-aliasing comes from the
// distance fields, so counts above 1 only smooth quad seams. The renderer
// then owns a multisampled color texture and resolves into the target.
func WithSampleCount(n uint32) RendererOption {
	return func(o *rendererOptions) {
		if n > 0 {
			o.sampleCount = n
		}
	}
}

// WithFenceTimeout sets how long Render waits for the GPU to finish.
func WithFenceTimeout(d time.Duration) RendererOption {
	return func(o *rendererOptions) {
		if d > 0 {
			o.fenceTimeout = d
		}
	}
}

// Renderer draws compiled frames. It owns its pipelines and buffers; the
// device and queue belong to the caller. A Renderer is not safe for
// concurrent use.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	opts   rendererOptions

	shader        hal.ShaderModule
	frameLayout   hal.BindGroupLayout
	textureLayout hal.BindGroupLayout
	shapeLayout   hal.PipelineLayout
	texLayout     hal.PipelineLayout
	shapePipeline hal.RenderPipeline
	texPipeline   hal.RenderPipeline
	sampler       hal.Sampler

	uniform    growableBuffer
	primitives growableBuffer
	vertices   growableBuffer
	indices    growableBuffer
	frameGroup hal.BindGroup

	msaaTex    hal.Texture
	msaaView   hal.TextureView
	msaaWidth  uint32
	msaaHeight uint32

	scratch []byte
	calls   []drawCall
}

// NewRenderer creates the display pipelines on device.
func NewRenderer(device hal.Device, queue hal.Queue, opts ...RendererOption) (*Renderer, error) {
	o := defaultRendererOptions()
	for _, opt := range opts {
		opt(&o)
	}
	r := &Renderer{
		device:     device,
		queue:      queue,
		opts:       o,
		uniform:    growableBuffer{label: "sdf_canvas_viewport", usage: gputypes.BufferUsageUniform},
		primitives: growableBuffer{label: "sdf_canvas_primitives", usage: gputypes.BufferUsageStorage},
		vertices:   growableBuffer{label: "sdf_canvas_vertices", usage: gputypes.BufferUsageVertex},
		indices:    growableBuffer{label: "sdf_canvas_indices", usage: gputypes.BufferUsageIndex},
	}
	if err := r.createPipelines(); err != nil {
		r.Destroy()
		return nil, err
	}
	sdfcanvas.Logger().Info("gpu: sdf canvas pipeline created",
		"format", o.format, "samples", o.sampleCount)
	return r, nil
}

// NewRendererFromProvider creates a Renderer on a shared device. The
// provider must also implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue. Its surface format is the default target format.
func NewRendererFromProvider(p gpucontext.DeviceProvider, opts ...RendererOption) (*Renderer, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	opts = append([]RendererOption{WithTargetFormat(p.SurfaceFormat())}, opts...)
	return NewRenderer(device, queue, opts...)
}

// TextureLayout returns the layout host bind groups for group 1 must use.
func (r *Renderer) TextureLayout() hal.BindGroupLayout { return r.textureLayout }

// Sampler returns a clamp-to-edge linear sampler suitable for group 1.
func (r *Renderer) Sampler() hal.Sampler { return r.sampler }

// TargetFormat returns the color format the pipelines render to.
func (r *Renderer) TargetFormat() gputypes.TextureFormat { return r.opts.format }

func (r *Renderer) createPipelines() error {
	shader, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "sdf_canvas_shader",
		Source: hal.ShaderSource{WGSL: shaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile sdf_canvas shader: %w", err)
	}
	r.shader = shader

	// Group 0: viewport uniform and primitive storage buffer.
	r.frameLayout, err = r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sdf_canvas_frame_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create frame layout: %w", err)
	}

	// Group 1: texture and sampler.
	r.textureLayout, err = r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sdf_canvas_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create texture layout: %w", err)
	}

	r.shapeLayout, err = r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sdf_canvas_shape_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.frameLayout},
	})
	if err != nil {
		return fmt.Errorf("create shape pipeline layout: %w", err)
	}
	r.texLayout, err = r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sdf_canvas_textured_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.frameLayout, r.textureLayout},
	})
	if err != nil {
		return fmt.Errorf("create textured pipeline layout: %w", err)
	}

	r.sampler, err = r.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "sdf_canvas_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}

	if r.shapePipeline, err = r.createPipeline("sdf_canvas_shape_pipeline", r.shapeLayout, shapeFragmentEntry); err != nil {
		return err
	}
	if r.texPipeline, err = r.createPipeline("sdf_canvas_textured_pipeline", r.texLayout, textureEntry); err != nil {
		return err
	}
	return nil
}

func (r *Renderer) createPipeline(label string, layout hal.PipelineLayout, fragment string) (hal.RenderPipeline, error) {
	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: vertexEntry,
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: fragment,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    r.opts.format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: r.opts.sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return pipeline, nil
}

// Render draws f into target, which must be f.Width×f.Height in the
// renderer's target format. The pass clears to the frame background (or
// transparent), then issues one indexed draw per group. Textured groups
// whose texture textures cannot bind are skipped. Render blocks until the
// GPU finishes or the fence timeout expires.
func (r *Renderer) Render(f *sdfcanvas.Frame, target hal.TextureView, textures TextureBinder) error {
	if r.device == nil {
		return ErrDestroyed
	}
	if f.Width <= 0 || f.Height <= 0 {
		return nil
	}
	if err := r.upload(f); err != nil {
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "sdf_canvas_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("sdf_canvas_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	attachment := hal.RenderPassColorAttachment{
		View:       target,
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
		ClearValue: clearValue(f),
	}
	if r.opts.sampleCount > 1 {
		// #nosec G115 -- frame dimensions are positive
		if err := r.ensureMSAA(uint32(f.Width), uint32(f.Height)); err != nil {
			encoder.DiscardEncoding()
			return err
		}
		attachment.View = r.msaaView
		attachment.ResolveTarget = target
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "sdf_canvas_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{attachment},
	})
	r.calls = planDraws(r.calls, f, textures)
	r.recordDraws(rp, r.calls)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := r.device.Wait(fence, 1, r.opts.fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

// drawCall is one planned DrawIndexed.
type drawCall struct {
	group        int
	textured     bool
	textureGroup hal.BindGroup
	first, count uint32
}

// planDraws maps groups to draw calls in frame order, dropping textured
// groups without a bind group.
func planDraws(dst []drawCall, f *sdfcanvas.Frame, textures TextureBinder) []drawCall {
	dst = dst[:0]
	for i, g := range f.Groups {
		call := drawCall{group: i}
		call.first, call.count = g.IndexRange()
		if g.Kind.IsTextured() {
			var ok bool
			if textures != nil {
				call.textureGroup, ok = textures.BindGroup(g.Texture)
			}
			if !ok || call.textureGroup == nil {
				sdfcanvas.Logger().Warn("gpu: texture not bound, group skipped",
					"group", i, "kind", g.Kind, "texture", g.Texture)
				continue
			}
			call.textured = true
		}
		dst = append(dst, call)
	}
	return dst
}

// recordDraws issues one DrawIndexed per planned call, switching pipelines
// only when the group kind changes between textured and untextured.
func (r *Renderer) recordDraws(rp hal.RenderPassEncoder, calls []drawCall) {
	if len(calls) == 0 {
		return
	}
	rp.SetVertexBuffer(0, r.vertices.buf, 0)
	rp.SetIndexBuffer(r.indices.buf, gputypes.IndexFormatUint32, 0)

	for i, c := range calls {
		if i == 0 || c.textured != calls[i-1].textured {
			if c.textured {
				rp.SetPipeline(r.texPipeline)
			} else {
				rp.SetPipeline(r.shapePipeline)
			}
			rp.SetBindGroup(0, r.frameGroup, nil)
		}
		if c.textured {
			rp.SetBindGroup(1, c.textureGroup, nil)
		}
		rp.DrawIndexed(c.count, 1, c.first, 0, 0)
	}
}

// upload writes the frame's buffers and rebuilds bind group 0 when a buffer
// was reallocated.
func (r *Renderer) upload(f *sdfcanvas.Frame) error {
	r.scratch = encodeViewport(r.scratch, f)
	grownUniform, err := r.uniform.upload(r.device, r.queue, r.scratch)
	if err != nil {
		return err
	}
	r.scratch = f.AppendPrimitiveBytes(r.scratch[:0])
	grownPrims, err := r.primitives.upload(r.device, r.queue, r.scratch)
	if err != nil {
		return err
	}
	r.scratch = f.AppendVertexBytes(r.scratch[:0])
	if _, err := r.vertices.upload(r.device, r.queue, r.scratch); err != nil {
		return err
	}
	r.scratch = f.AppendIndexBytes(r.scratch[:0])
	if _, err := r.indices.upload(r.device, r.queue, r.scratch); err != nil {
		return err
	}

	if r.frameGroup != nil && !grownUniform && !grownPrims {
		return nil
	}
	if r.frameGroup != nil {
		r.device.DestroyBindGroup(r.frameGroup)
		r.frameGroup = nil
	}
	group, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "sdf_canvas_frame_bind",
		Layout: r.frameLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: r.uniform.buf.NativeHandle(), Offset: 0, Size: viewportUniformSize,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: r.primitives.buf.NativeHandle(), Offset: 0, Size: r.primitives.size,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create frame bind group: %w", err)
	}
	r.frameGroup = group
	return nil
}

func (r *Renderer) ensureMSAA(w, h uint32) error {
	if r.msaaTex != nil && r.msaaWidth == w && r.msaaHeight == h {
		return nil
	}
	r.destroyMSAA()
	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "sdf_canvas_msaa_color",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   r.opts.sampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        r.opts.format,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create MSAA color texture: %w", err)
	}
	r.msaaTex = tex
	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "sdf_canvas_msaa_color_view",
	})
	if err != nil {
		r.destroyMSAA()
		return fmt.Errorf("create MSAA color view: %w", err)
	}
	r.msaaView = view
	r.msaaWidth, r.msaaHeight = w, h
	return nil
}

func (r *Renderer) destroyMSAA() {
	if r.msaaView != nil {
		r.device.DestroyTextureView(r.msaaView)
		r.msaaView = nil
	}
	if r.msaaTex != nil {
		r.device.DestroyTexture(r.msaaTex)
		r.msaaTex = nil
	}
	r.msaaWidth, r.msaaHeight = 0, 0
}

// Destroy releases all GPU resources held by the renderer. It is safe to
// call more than once; Render fails afterwards.
func (r *Renderer) Destroy() {
	if r.device == nil {
		return
	}
	d := r.device
	r.destroyMSAA()
	if r.frameGroup != nil {
		d.DestroyBindGroup(r.frameGroup)
		r.frameGroup = nil
	}
	r.uniform.destroy(d)
	r.primitives.destroy(d)
	r.vertices.destroy(d)
	r.indices.destroy(d)
	if r.texPipeline != nil {
		d.DestroyRenderPipeline(r.texPipeline)
		r.texPipeline = nil
	}
	if r.shapePipeline != nil {
		d.DestroyRenderPipeline(r.shapePipeline)
		r.shapePipeline = nil
	}
	if r.sampler != nil {
		d.DestroySampler(r.sampler)
		r.sampler = nil
	}
	if r.texLayout != nil {
		d.DestroyPipelineLayout(r.texLayout)
		r.texLayout = nil
	}
	if r.shapeLayout != nil {
		d.DestroyPipelineLayout(r.shapeLayout)
		r.shapeLayout = nil
	}
	if r.textureLayout != nil {
		d.DestroyBindGroupLayout(r.textureLayout)
		r.textureLayout = nil
	}
	if r.frameLayout != nil {
		d.DestroyBindGroupLayout(r.frameLayout)
		r.frameLayout = nil
	}
	if r.shader != nil {
		d.DestroyShaderModule(r.shader)
		r.shader = nil
	}
	r.device = nil
	r.queue = nil
}

// clearValue is the frame background as a linear premultiplied clear color.
func clearValue(f *sdfcanvas.Frame) gputypes.Color {
	c := f.ClearColor()
	return gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
}
