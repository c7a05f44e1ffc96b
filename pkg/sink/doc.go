// Package sink renders a packed [atlas.Layout] into descriptor formats that
// engines and tools read next to the atlas image.
//
// [RenderJSON] writes a human-readable descriptor in the spirit of
// TexturePacker's JSON hash: atlas metadata plus one record per region with
// its atlas frame, document position, size and texture coordinates.
//
//	data, err := sink.RenderJSON(layout,
//	    sink.WithJSONImage("hero.png"),
//	    sink.WithJSONCanvas(1920, 1080),
//	    sink.WithJSONCoordinateSystem(psdb.BottomLeft),
//	)
//
// The binary PSDB form lives in package psdb.
package sink
