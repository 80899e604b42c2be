// Package overlay is the presentation surface for scan passes.
//
// A View holds the page being shown, the overlay boxes laid over it, the
// recognized text and the scan trigger state. It implements scan.Presenter.
// Mutations are expected from the interaction queue; snapshot reads from
// other goroutines are guarded by a mutex.
//
// # Layout
//
// The page is aspect-fit into the container and centered, so a page whose
// aspect ratio differs from the container's leaves either side bands
// (horizontal letterbox) or top and bottom bands (vertical letterbox). The
// rectangle the page actually occupies is the display rect, and it is what
// Layout reports to the coordinate mapper. Overlay boxes are in container
// coordinates, origin top-left.
//
// # Rendering
//
// Render composes the view into an RGBA image: a white container, the page
// resized into the display rect, the overlay boxes stroked as rounded
// outlines, and, when the style asks for one, a text panel below the
// container listing the recognized lines.
package overlay
