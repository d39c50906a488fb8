package sdfcanvas

import "sync"

// ImageRef is an opaque handle to an image managed by the host.
type ImageRef uint32

// FontRef is an opaque handle to a font managed by the host.
type FontRef uint32

// TextureRef is an opaque handle into an externally managed texture table
// (image textures and glyph atlases). The core passes it through untouched.
type TextureRef uint32

// NoTexture marks untextured primitives and draw groups.
const NoTexture = ^TextureRef(0)

// IsValid reports whether r refers to a texture.
func (r TextureRef) IsValid() bool { return r != NoTexture }

// SurfaceDescriptor is what the host supplies each frame: the logical
// bounds and the physical scale factor.
type SurfaceDescriptor struct {
	Bounds      Rect
	ScaleFactor float32
}

// ImageInfo describes a resolved image.
type ImageInfo struct {
	Width, Height int
	Texture       TextureRef
}

// ImageProvider resolves image references synchronously.
// Implementations return an error wrapping ErrResourceNotFound for unknown
// references.
type ImageProvider interface {
	LookupImage(ref ImageRef) (ImageInfo, error)
}

// ImageTable is a map-backed ImageProvider. It is safe for concurrent use.
type ImageTable struct {
	mu     sync.RWMutex
	images map[ImageRef]ImageInfo
	next   ImageRef
}

// NewImageTable creates an empty table.
func NewImageTable() *ImageTable {
	return &ImageTable{images: make(map[ImageRef]ImageInfo)}
}

// Add registers an image and returns its reference.
func (t *ImageTable) Add(info ImageInfo) ImageRef {
	t.mu.Lock()
	defer t.mu.Unlock()
	ref := t.next
	t.next++
	t.images[ref] = info
	return ref
}

// Set registers info under a caller-chosen reference.
func (t *ImageTable) Set(ref ImageRef, info ImageInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.images[ref] = info
	if ref >= t.next {
		t.next = ref + 1
	}
}

// Remove forgets ref.
func (t *ImageTable) Remove(ref ImageRef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.images, ref)
}

// LookupImage implements ImageProvider.
func (t *ImageTable) LookupImage(ref ImageRef) (ImageInfo, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	info, ok := t.images[ref]
	if !ok {
		return ImageInfo{}, &ResourceError{Kind: ResourceImage, Ref: uint32(ref)}
	}
	return info, nil
}
