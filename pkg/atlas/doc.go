// Package atlas packs layer rectangles into a single power-of-two texture atlas.
//
// # Overview
//
// A sprite atlas is one composite image holding many smaller images, so a
// game engine can draw every sprite of a document from a single texture.
// [Pack] takes the layer rectangles of a document and decides where each
// one lives in that texture. It does not touch pixels: the result is a
// [Layout] that a compositor follows to copy layer pixels, and that the
// psdb package serializes for engines to read.
//
// # Shelf Packing
//
// Regions are sorted tallest first (ties keep their input order) and laid
// out left to right along horizontal shelves. When the next region would
// cross the atlas width, a new shelf starts below the tallest region of the
// current one. Every region is surrounded by the configured padding.
//
// The atlas width is fixed up front from the total padded area: the square
// root of that area, at least [MinSize], rounded up to a power of two. The
// height is whatever the shelves need, rounded up to a power of two and
// never below [MinSize]. A region wider than the atlas still gets placed on
// its own shelf; the width is not re-derived afterwards.
//
// # Texture Coordinates
//
// Once the final atlas size is known, each region gets normalized UV
// coordinates (u1, v1)-(u2, v2) in [0, 1], measured from the top-left corner
// of the atlas. Placement and UV derivation are separate steps, so no
// region is ever observed with placeholder coordinates.
//
// # Determinism
//
// [Pack] is a pure function of its input slice and padding. Packing the same
// regions in the same order always yields an identical [Layout], which keeps
// atlas builds reproducible and cacheable.
package atlas
