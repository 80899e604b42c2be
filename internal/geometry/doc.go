// Package geometry converts text-recognition bounding boxes into the view
// coordinates of an aspect-fit image presentation.
//
// # Coordinate Spaces
//
// Three spaces are involved:
//   - Normalized: the unit square [0,1]x[0,1] with the origin at the
//     BOTTOM-left. Recognizers report boxes here (see NormalizedBox).
//   - Image pixels: the source page, origin top-left. Tesseract reports boxes
//     here; NormalizePixelRect converts them.
//   - View: the container the page is displayed in, origin top-left, in
//     view units. The page occupies the DisplayRect returned by AspectFit,
//     which may be smaller than the container on one axis (letterboxing).
//
// # Conversion
//
// Mapper.ToScreen flips the vertical origin, scales by the DisplayRect size,
// offsets by the DisplayRect origin on the letterboxed axis, corrects the
// y-origin by the box height, and finally inflates the rectangle by the
// margin so the outline does not sit on top of the glyphs.
//
// When the page fills the container exactly on both axes no offset and no
// height correction are applied. Boxes come out anchored at their bottom
// edge in that case. Mapper.CorrectFilledOrigin opts into applying the
// height correction there as well.
//
// All functions in this package are pure and safe for concurrent use.
package geometry
