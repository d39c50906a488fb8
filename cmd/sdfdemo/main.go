// Command sdfdemo renders a YAML scene with the CPU reference rasterizer.
//
// Usage:
//
//	sdfdemo -scene scene.yaml -out scene.png [-dump scene.frame] [-v]
//
// Font and image paths in the scene are resolved relative to the scene
// file.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/sdfcanvas"
	"github.com/gogpu/sdfcanvas/scene"
	"github.com/gogpu/sdfcanvas/sdf"
	"github.com/gogpu/sdfcanvas/text"
)

// Font atlases use texture refs above this base so they never collide with
// image textures.
const atlasTextureBase = 1 << 16

func main() {
	var (
		scenePath = flag.String("scene", "scene.yaml", "scene file")
		output    = flag.String("out", "scene.png", "output PNG")
		dump      = flag.String("dump", "", "also write the compiled frame in binary form")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		sdfcanvas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(*scenePath, *output, *dump); err != nil {
		log.Fatal(err)
	}
}

// resources holds everything loaded for a scene.
type resources struct {
	fonts    *text.Registry
	images   *sdfcanvas.ImageTable
	textures *sdf.TextureSet
	env      scene.Env
}

func run(scenePath, output, dump string) error {
	f, err := os.Open(scenePath)
	if err != nil {
		return err
	}
	s, err := scene.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", scenePath, err)
	}

	res, err := load(s, filepath.Dir(scenePath))
	if err != nil {
		return err
	}

	c, err := s.NewCanvas(sdfcanvas.WithImageProvider(res.images))
	if err != nil {
		return err
	}
	defer c.Close()

	if err := s.Record(c.Recorder(), res.env); err != nil {
		log.Printf("warning: %v", err)
	}
	frame := c.Compile(nil)
	for _, d := range append(c.Diagnostics(), frame.Diagnostics...) {
		log.Printf("diagnostic: %v", d)
	}
	if n := c.DroppedDiagnostics() + frame.DroppedDiagnostics; n > 0 {
		log.Printf("%d more diagnostics dropped", n)
	}

	// Atlases are complete once every layout is built.
	for name, ref := range res.env.Fonts {
		font, err := res.fonts.LookupFont(ref)
		if err != nil {
			return fmt.Errorf("font %s: %w", name, err)
		}
		res.textures.Set(font.AtlasTexture(), font.Atlas().Image())
	}

	r := sdf.NewRasterizer(res.textures, 0)
	defer r.Close()
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	if err := r.Render(frame, img); err != nil {
		return err
	}
	if err := writePNG(output, img); err != nil {
		return err
	}

	if dump != "" {
		b, err := frame.MarshalBinary()
		if err != nil {
			return err
		}
		if err := os.WriteFile(dump, b, 0o600); err != nil {
			return err
		}
	}

	printSummary(frame)
	log.Printf("Scene saved to %s (%dx%d)\n", output, frame.Width, frame.Height)
	return nil
}

func load(s *scene.Scene, dir string) (*resources, error) {
	res := &resources{
		fonts:    text.NewRegistry(),
		images:   sdfcanvas.NewImageTable(),
		textures: sdf.NewTextureSet(),
	}
	res.env = scene.Env{
		Text:   text.NewEngine(res.fonts),
		Fonts:  make(map[string]sdfcanvas.FontRef, len(s.Fonts)),
		Images: make(map[string]sdfcanvas.ImageRef, len(s.Images)),
	}

	for _, name := range sortedKeys(s.Fonts) {
		data, err := os.ReadFile(resolve(dir, s.Fonts[name]))
		if err != nil {
			return nil, fmt.Errorf("font %s: %w", name, err)
		}
		ref, err := res.fonts.Register(data)
		if err != nil {
			return nil, fmt.Errorf("font %s: %w", name, err)
		}
		if err := res.fonts.SetAtlasTexture(ref, atlasTextureBase+sdfcanvas.TextureRef(ref)); err != nil {
			return nil, err
		}
		res.env.Fonts[name] = ref
	}

	for i, name := range sortedKeys(s.Images) {
		img, err := decodeImage(resolve(dir, s.Images[name]))
		if err != nil {
			return nil, fmt.Errorf("image %s: %w", name, err)
		}
		tex := sdfcanvas.TextureRef(i)
		res.textures.Set(tex, img)
		b := img.Bounds()
		res.env.Images[name] = res.images.Add(sdfcanvas.ImageInfo{Width: b.Dx(), Height: b.Dy(), Texture: tex})
	}
	return res, nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(f *sdfcanvas.Frame) {
	fmt.Printf("%d primitives, %d draw groups\n", len(f.Primitives), len(f.Groups))
	for i, g := range f.Groups {
		tex := "-"
		if g.Texture.IsValid() {
			tex = fmt.Sprint(g.Texture)
		}
		fmt.Printf("  group %d: %-9s texture %-6s primitives [%d, %d)\n", i, g.Kind, tex, g.Start, g.End)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
