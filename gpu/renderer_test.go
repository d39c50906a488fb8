//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/sdfcanvas"
)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func createTarget(t *testing.T, device hal.Device, w, h uint32) hal.TextureView {
	t.Helper()
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8UnormSrgb,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "test_target_view"})
	if err != nil {
		t.Fatalf("CreateTextureView failed: %v", err)
	}
	t.Cleanup(func() {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
	})
	return view
}

// testFrame compiles fill, glyph, fill, image: four groups, two textured.
func testFrame(t *testing.T, fills int) *sdfcanvas.Frame {
	t.Helper()
	images := sdfcanvas.NewImageTable()
	img := images.Add(sdfcanvas.ImageInfo{Width: 4, Height: 4, Texture: 20})
	c, err := sdfcanvas.New(sdfcanvas.R(0, 0, 64, 48), 1, sdfcanvas.WithImageProvider(images))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Close)
	c.SetBackground(sdfcanvas.White)

	rec := c.Recorder()
	for i := range fills {
		x := float32(i % 60)
		rec.Fill(sdfcanvas.R(x, 0, x+4, 4), sdfcanvas.Solid(sdfcanvas.Red))
	}
	rec.DrawText(&sdfcanvas.TextLayout{
		Color: sdfcanvas.Black,
		Glyphs: []sdfcanvas.PositionedGlyph{{
			Atlas: 10, Rect: sdfcanvas.R(0, -8, 8, 0), Cell: sdfcanvas.R(0, 0, 8, 8), DistanceRange: 2,
		}},
	}, sdfcanvas.V2(4, 20))
	rec.Fill(sdfcanvas.R(20, 20, 30, 30), sdfcanvas.Solid(sdfcanvas.Blue))
	rec.DrawImage(sdfcanvas.R(40, 20, 60, 40), img)

	f := c.Compile(nil)
	if len(f.Groups) != 4 {
		t.Fatalf("test frame has %d groups, want 4", len(f.Groups))
	}
	return f
}

func TestNewRenderer(t *testing.T) {
	device, queue := createNoopDevice(t)
	r, err := NewRenderer(device, queue)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Destroy()

	if r.TextureLayout() == nil || r.Sampler() == nil {
		t.Error("TextureLayout() and Sampler() must be available after creation")
	}
	if r.TargetFormat() != gputypes.TextureFormatBGRA8UnormSrgb {
		t.Errorf("TargetFormat() = %v, want BGRA8UnormSrgb", r.TargetFormat())
	}
	if r.shapePipeline == nil || r.texPipeline == nil {
		t.Error("pipelines not created")
	}
}

func TestRendererOptions(t *testing.T) {
	device, queue := createNoopDevice(t)
	r, err := NewRenderer(device, queue,
		WithTargetFormat(gputypes.TextureFormatRGBA8Unorm),
		WithTargetFormat(gputypes.TextureFormatUndefined),
		WithSampleCount(4),
		WithSampleCount(0),
		WithFenceTimeout(0),
	)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Destroy()

	if r.opts.format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("format = %v, want RGBA8Unorm", r.opts.format)
	}
	if r.opts.sampleCount != 4 {
		t.Errorf("sampleCount = %d, want 4", r.opts.sampleCount)
	}
	if r.opts.fenceTimeout != DefaultFenceTimeout {
		t.Errorf("fenceTimeout = %v, want default", r.opts.fenceTimeout)
	}
}

func TestRendererRender(t *testing.T) {
	device, queue := createNoopDevice(t)
	r, err := NewRenderer(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()

	f := testFrame(t, 2)
	target := createTarget(t, device, uint32(f.Width), uint32(f.Height))

	var asked []sdfcanvas.TextureRef
	binder := TextureBinderFunc(func(tex sdfcanvas.TextureRef) (hal.BindGroup, bool) {
		asked = append(asked, tex)
		return nil, false
	})
	if err := r.Render(f, target, binder); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(asked) != 2 || asked[0] != 10 || asked[1] != 20 {
		t.Errorf("binder asked for %v, want [10 20]", asked)
	}
	if r.frameGroup == nil {
		t.Error("frame bind group not created")
	}
	if r.primitives.size < uint64(len(f.Primitives)*sdfcanvas.PackedPrimitiveSize) {
		t.Errorf("primitive buffer %d bytes too small", r.primitives.size)
	}

	// A nil binder skips textured groups without failing.
	if err := r.Render(f, target, nil); err != nil {
		t.Errorf("Render(nil binder) error = %v", err)
	}
}

func TestRendererBuffersGrow(t *testing.T) {
	device, queue := createNoopDevice(t)
	r, err := NewRenderer(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()

	small := testFrame(t, 1)
	target := createTarget(t, device, uint32(small.Width), uint32(small.Height))
	if err := r.Render(small, target, nil); err != nil {
		t.Fatal(err)
	}
	if r.primitives.size != minBufferSize {
		t.Errorf("primitive buffer = %d bytes, want %d", r.primitives.size, minBufferSize)
	}

	large := testFrame(t, 200)
	if err := r.Render(large, target, nil); err != nil {
		t.Fatal(err)
	}
	need := uint64(len(large.Primitives) * sdfcanvas.PackedPrimitiveSize)
	if r.primitives.size < need || r.primitives.size&(r.primitives.size-1) != 0 {
		t.Errorf("primitive buffer = %d bytes, want a power of two >= %d", r.primitives.size, need)
	}
	if r.frameGroup == nil {
		t.Error("frame bind group missing after the primitive buffer grew")
	}

	// Same-size uploads keep the allocation.
	size := r.primitives.size
	if err := r.Render(large, target, nil); err != nil {
		t.Fatal(err)
	}
	if r.primitives.size != size {
		t.Errorf("primitive buffer reallocated: %d -> %d bytes", size, r.primitives.size)
	}
}

func TestRendererMultisample(t *testing.T) {
	device, queue := createNoopDevice(t)
	r, err := NewRenderer(device, queue, WithSampleCount(4))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()

	f := testFrame(t, 1)
	target := createTarget(t, device, uint32(f.Width), uint32(f.Height))
	if err := r.Render(f, target, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if r.msaaTex == nil || r.msaaWidth != uint32(f.Width) || r.msaaHeight != uint32(f.Height) {
		t.Errorf("MSAA texture = %v %dx%d, want %dx%d", r.msaaTex, r.msaaWidth, r.msaaHeight, f.Width, f.Height)
	}
}

func TestPlanDraws(t *testing.T) {
	device, queue := createNoopDevice(t)
	r, err := NewRenderer(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()

	f := testFrame(t, 1)
	target := createTarget(t, device, uint32(f.Width), uint32(f.Height))
	if err := r.Render(f, target, nil); err != nil {
		t.Fatal(err)
	}
	// Any live bind group stands in for a host texture group.
	bound := r.frameGroup

	tests := []struct {
		name     string
		binder   TextureBinder
		wantKind []bool
	}{
		{"all bound", TextureBinderFunc(func(sdfcanvas.TextureRef) (hal.BindGroup, bool) {
			return bound, true
		}), []bool{false, true, false, true}},
		{"image missing", TextureBinderFunc(func(tex sdfcanvas.TextureRef) (hal.BindGroup, bool) {
			return bound, tex == 10
		}), []bool{false, true, false}},
		{"nil binder", nil, []bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := planDraws(nil, f, tt.binder)
			if len(calls) != len(tt.wantKind) {
				t.Fatalf("planDraws() = %d calls, want %d", len(calls), len(tt.wantKind))
			}
			for i, c := range calls {
				if c.textured != tt.wantKind[i] {
					t.Errorf("call %d textured = %v, want %v", i, c.textured, tt.wantKind[i])
				}
				first, count := f.Groups[c.group].IndexRange()
				if c.first != first || c.count != count {
					t.Errorf("call %d range = (%d, %d), want (%d, %d)", i, c.first, c.count, first, count)
				}
			}
		})
	}
}

func TestRendererDestroy(t *testing.T) {
	device, queue := createNoopDevice(t)
	r, err := NewRenderer(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	r.Destroy()
	r.Destroy()
	if err := r.Render(testFrame(t, 1), nil, nil); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Render() after Destroy error = %v, want ErrDestroyed", err)
	}
}

// mockDevice implements gpucontext.Device for testing.
type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

type mockQueue struct{}

type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	format gputypes.TextureFormat
}

func (m *mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }

// halMockProvider adds HAL access to mockProvider.
type halMockProvider struct {
	mockProvider
	device hal.Device
	queue  hal.Queue
}

func (p *halMockProvider) HalDevice() any { return p.device }
func (p *halMockProvider) HalQueue() any  { return p.queue }

func TestNewRendererFromProvider(t *testing.T) {
	device, queue := createNoopDevice(t)

	t.Run("without HAL", func(t *testing.T) {
		_, err := NewRendererFromProvider(&mockProvider{format: gputypes.TextureFormatBGRA8Unorm})
		if !errors.Is(err, ErrNoHAL) {
			t.Errorf("error = %v, want ErrNoHAL", err)
		}
	})

	t.Run("wrong HAL types", func(t *testing.T) {
		p := &halMockProvider{mockProvider: mockProvider{format: gputypes.TextureFormatBGRA8Unorm}}
		_, err := NewRendererFromProvider(p)
		if !errors.Is(err, ErrNoHAL) {
			t.Errorf("error = %v, want ErrNoHAL", err)
		}
	})

	t.Run("surface format", func(t *testing.T) {
		p := &halMockProvider{
			mockProvider: mockProvider{format: gputypes.TextureFormatRGBA8Unorm},
			device:       device,
			queue:        queue,
		}
		r, err := NewRendererFromProvider(p)
		if err != nil {
			t.Fatalf("NewRendererFromProvider() error = %v", err)
		}
		defer r.Destroy()
		if r.TargetFormat() != gputypes.TextureFormatRGBA8Unorm {
			t.Errorf("TargetFormat() = %v, want the surface format", r.TargetFormat())
		}
	})

	t.Run("option overrides surface format", func(t *testing.T) {
		p := &halMockProvider{
			mockProvider: mockProvider{format: gputypes.TextureFormatRGBA8Unorm},
			device:       device,
			queue:        queue,
		}
		r, err := NewRendererFromProvider(p, WithTargetFormat(gputypes.TextureFormatBGRA8Unorm))
		if err != nil {
			t.Fatalf("NewRendererFromProvider() error = %v", err)
		}
		defer r.Destroy()
		if r.TargetFormat() != gputypes.TextureFormatBGRA8Unorm {
			t.Errorf("TargetFormat() = %v, want BGRA8Unorm", r.TargetFormat())
		}
	})
}

func TestEncodeViewport(t *testing.T) {
	f := &sdfcanvas.Frame{Origin: sdfcanvas.V2(-8, 4), Width: 100, Height: 50}
	b := encodeViewport(nil, f)
	if len(b) != viewportUniformSize {
		t.Fatalf("len = %d, want %d", len(b), viewportUniformSize)
	}
	// -8.0 is 0xc1000000.
	if b[3] != 0xc1 || b[2] != 0 {
		t.Errorf("origin.x bytes = % x", b[0:4])
	}
}
