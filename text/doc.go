// Package text lays out single lines of text for sdfcanvas.
//
// Fonts are registered with a Registry, which parses them with go-text for
// shaping and with golang.org/x/image/font/sfnt for outlines. Each font owns
// an Atlas of single-channel signed distance fields, rasterized on demand at
// BaseSize pixels per em, so one atlas serves every font size.
//
// An Engine turns a Request into a *sdfcanvas.TextLayout: it resolves bidi
// runs, shapes each run with HarfBuzz, places the glyphs along one baseline
// and attaches their atlas cells. Layouts are cached.
//
//	fonts := text.NewRegistry()
//	ref, err := fonts.Register(goregular.TTF)
//	if err != nil {
//		return err
//	}
//	_ = fonts.SetAtlasTexture(ref, atlasTex)
//
//	engine := text.NewEngine(fonts)
//	layout, err := engine.Layout(text.Request{Text: "Hello", Font: ref, Size: 16, Color: sdfcanvas.Black})
//	if err != nil {
//		return err
//	}
//	canvas.Recorder().DrawText(layout, sdfcanvas.V2(10, 40))
//
//	font, _ := fonts.LookupFont(ref)
//	textures.Set(atlasTex, font.Atlas().Image())
//
// Glyphs carry the atlas texture reference that was current when they were
// laid out, so set it before the first layout. Upload the atlas image again
// whenever Atlas.Version changes.
package text
