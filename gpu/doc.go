//go:build !nogpu

// Package gpu displays compiled sdfcanvas frames with a wgpu HAL render
// pipeline.
//
// The frame's primitive array is uploaded verbatim into a read-only storage
// buffer; its vertices and indices go into vertex and index buffers. The
// fragment shader evaluates each primitive's signed distance at the pixel
// center and anti-aliases with fwidth, so no MSAA is needed. Each DrawGroup
// is one DrawIndexed call, issued in frame order.
//
// Untextured groups use bind group 0 only. Glyph and image groups also bind
// group 1 (texture and sampler), which the host creates against
// Renderer.TextureLayout and hands back through a TextureBinder. Glyph atlases
// are single-channel distance fields (R8Unorm). Image textures are straight
// alpha; upload them in an sRGB format so sampling returns linear color.
//
// Blending is premultiplied source-over in linear light. Render into an sRGB
// target format to get sRGB output.
//
// Usage with a gogpu window:
//
//	r, err := gpu.NewRendererFromProvider(app.DeviceProvider())
//	if err != nil {
//		return err
//	}
//	defer r.Destroy()
//
//	frame = canvas.Compile(frame)
//	if err := r.Render(frame, surfaceView, binder); err != nil {
//		return err
//	}
package gpu
