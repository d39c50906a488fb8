// Package scene reads drawings described in YAML and replays them into a
// canvas recorder.
//
// A scene file lists its surface, the fonts and images it needs, and the
// draw commands in paint order:
//
//	bounds: [0, 0, 320, 200]
//	scale: 2
//	background: "#f4f1ea"
//	fonts:
//	  body: fonts/Go-Regular.ttf
//	images:
//	  logo: img/logo.png
//	commands:
//	  - fill: {rect: [10, 10, 150, 90], radii: 12, color: "#ff69b4"}
//	  - stroke: {rect: [10, 10, 150, 90], radii: [12, 12, 0, 0], color: "#222", width: 2}
//	  - line: {from: [10, 120], to: [300, 120], color: "#333", width: 3, cap: round}
//	  - text: {text: "Hello", font: body, size: 24, color: "#000", at: [20, 170]}
//	  - image: {rect: [200, 10, 300, 110], image: logo, scaling: {mode: fit, keep_aspect: true}}
//
// Paths are resolved by the caller; the package does no I/O beyond reading
// the YAML stream.
package scene
