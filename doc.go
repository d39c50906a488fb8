// Package sdfcanvas is a 2D vector canvas rendered with analytic signed
// distance fields.
//
// # Overview
//
// Drawing calls (filled and stroked rects with per-corner radii, lines with
// caps, text, images) are recorded per frame into a Canvas. The batch
// compiler turns them into a Frame: a fixed-layout array of packed
// primitives plus the draw groups a display pipeline submits in order,
// ideally a single draw per canvas. Each primitive is shaded by evaluating
// its distance function per pixel and converting distance to coverage, which
// gives resolution-independent anti-aliasing without tessellation.
//
// # Quick Start
//
//	c, _ := sdfcanvas.New(sdfcanvas.R(0, 0, 800, 600), 2)
//	c.SetBackground(sdfcanvas.White)
//
//	c.Clear()
//	rec := c.Recorder()
//	rec.FillRounded(sdfcanvas.R(10, 10, 200, 80), sdfcanvas.Uniform(8), sdfcanvas.SolidHex("#3366cc"))
//	rec.Line(sdfcanvas.V2(10, 100), sdfcanvas.V2(200, 100), sdfcanvas.Solid(sdfcanvas.Black), 2)
//
//	frame := c.Compile(nil)
//	// hand frame to gpu.Renderer, or rasterize with sdf.Rasterizer
//
// # Color
//
// Colors are given as straight-alpha sRGB. Packed primitives carry linear,
// premultiplied colors and every consumer blends source-over in linear
// light, encoding back to sRGB on output.
//
// # Architecture
//
//   - sdfcanvas: canvas, recorder, brush table, batch compiler, frame format
//   - sdf: distance functions, coverage rule, CPU reference rasterizer
//   - text: font registry, shaping, distance-field glyph atlas, layout cache
//   - gpu: WGSL display pipeline on gogpu/wgpu
//   - scene: YAML scene files replayed onto a recorder
package sdfcanvas
