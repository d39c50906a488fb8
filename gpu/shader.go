//go:build !nogpu

package gpu

import _ "embed"

//go:embed shaders/sdf_canvas.wgsl
var shaderSource string

// Shader entry points.
const (
	vertexEntry        = "vs_main"
	shapeFragmentEntry = "fs_shape"
	textureEntry       = "fs_textured"
)

// ShaderSource returns the WGSL source of the display shader.
func ShaderSource() string { return shaderSource }
