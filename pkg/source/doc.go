// Package source loads layered documents into memory for packing.
//
// A document is either a layer manifest (layers.toml or layers.json) that
// names each layer's image file and canvas position, or a plain directory
// of images, one layer per file. Either way [Load] returns a [Document]
// whose layers are flattened in drawing order, decoded, and ready to be
// turned into atlas regions.
//
// # Manifests
//
//	name = "hero"
//	width = 1024
//	height = 768
//
//	[[layer]]
//	name = "body"
//	file = "body.png"
//	x = 312
//	y = 140
//
//	[[layer]]
//	name = "face"
//	hidden = true
//
//	  [[layer.children]]
//	  name = "eyes"
//	  file = "face/eyes.png"
//	  x = 400
//	  y = 180
//
// Groups (layers without a file) contribute only their children. Hidden
// layers, and everything under a hidden group, are skipped unless
// [Options.IncludeHidden] is set. Image files are resolved relative to the
// manifest and may not escape its directory.
package source
