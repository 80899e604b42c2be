// Package capture supplies scanned page images to a scan pass.
//
// A Source yields a Result, an explicit variant of pages, cancellation or
// failure, instead of delegate callbacks. Only the first page of a
// successful capture is ever recognized; the remaining pages are carried
// for callers that want to report them.
//
// FileSource treats each path as one page of a document. Pages are decoded
// through PageCache, which applies EXIF orientation so that photos taken in
// portrait arrive upright, and caches decoded pages by path.
package capture
