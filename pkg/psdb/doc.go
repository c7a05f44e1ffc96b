// Package psdb reads and writes the PSDB binary layout descriptor.
//
// A PSDB buffer tells a game engine where each sprite of a packed atlas
// belongs in the original document and which part of the atlas texture to
// sample for it. All integers and floats are little-endian:
//
//	offset  size  field
//	0       4     magic "PSDB"
//	4       4     version (uint32, currently 1)
//	8       4     region count N (uint32)
//	12      ...   N region entries
//
// Each region entry is:
//
//	2       name length in bytes (uint16)
//	len     name, UTF-8, not null-terminated
//	4 x 8   X, Y, W, H, U1, V1, U2, V2 (float32)
//
// X and Y are the region's position in the source document, not in the
// atlas. With [BottomLeft], Y is flipped to canvasHeight - (y + height) so
// it still marks the sprite's visual top edge in a Y-up world. W and H are
// the pixel size and U1..V2 the atlas texture coordinates; neither depends
// on the coordinate system.
//
// [Serialize] computes the exact buffer size before writing a single byte,
// so a call either returns a complete buffer or an error, never a truncated
// one. [Decode] parses a buffer back into [Entry] values.
package psdb
