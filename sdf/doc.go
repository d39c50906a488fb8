// Package sdf implements the per-pixel evaluation contract of packed
// primitives: analytic signed distance functions for each primitive kind,
// the distance-to-coverage rule, and a CPU reference rasterizer.
//
// Distances are in physical pixels and negative inside a shape. Coverage is
// clamp(0.5 - d/fw, 0, 1), where fw is the screen-space rate of change of d.
// The GPU shader computes fw with fwidth; this package uses fw = 1, which is
// exact for the unit-gradient distances produced here.
//
// Rendering a compiled frame:
//
//	textures := sdf.NewTextureSet()
//	textures.Set(atlasRef, atlas.Image())
//
//	r := sdf.NewRasterizer(textures, 0)
//	defer r.Close()
//	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
//	if err := r.Render(frame, img); err != nil {
//		return err
//	}
package sdf
