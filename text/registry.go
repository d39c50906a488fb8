package text

import (
	"sync"

	"github.com/gogpu/sdfcanvas"
)

// FontProvider resolves font references synchronously. Implementations
// return an error matching sdfcanvas.ErrResourceNotFound for unknown
// references.
type FontProvider interface {
	LookupFont(ref sdfcanvas.FontRef) (*Font, error)
}

// Registry is the default FontProvider: an append-only table of parsed
// fonts. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	fonts []*Font
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register parses data and returns the new font's reference.
func (r *Registry) Register(data []byte) (sdfcanvas.FontRef, error) {
	f, err := ParseFont(data)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	f.ref = sdfcanvas.FontRef(len(r.fonts))
	r.fonts = append(r.fonts, f)
	r.mu.Unlock()

	sdfcanvas.Logger().Debug("text: font registered", "ref", f.ref, "name", f.name)
	return f.ref, nil
}

// LookupFont implements FontProvider.
func (r *Registry) LookupFont(ref sdfcanvas.FontRef) (*Font, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(ref) >= len(r.fonts) {
		return nil, fontNotFound(ref)
	}
	return r.fonts[ref], nil
}

// SetAtlasTexture records the texture the host uploaded ref's atlas to.
// Layouts produced afterwards carry tex on their glyphs.
func (r *Registry) SetAtlasTexture(ref sdfcanvas.FontRef, tex sdfcanvas.TextureRef) error {
	f, err := r.LookupFont(ref)
	if err != nil {
		return err
	}
	f.SetAtlasTexture(tex)
	return nil
}

// Len returns the number of registered fonts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fonts)
}
