// Package ocr provides the text-recognition capability used by a scan pass.
//
// Recognition is delegated to an engine behind the Recognizer interface.
// Every engine reports Observations: one per recognized line, each carrying
// ranked candidates whose boxes are expressed in the normalized,
// bottom-left-origin space of package geometry.
//
// # Engines
//
//   - Tesseract: local OCR via gosseract/v2. Requires the Tesseract library
//     and language data on the host:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//   - DocumentAI: Google Cloud Document AI OCR processor. Requires a project,
//     location, processor ID and application credentials.
//
// # Configuration
//
// Config is an immutable value built once (usually from the process
// configuration) and passed to every Recognize call. LevelAccurate, the
// default, runs the page through Preprocess before Tesseract sees it.
//
// # Error Handling
//
// Recognize returns an error when the engine cannot be initialized or the
// page cannot be processed. A line whose box cannot be resolved is still
// reported, with a nil Candidate.Box, so callers can keep its text.
package ocr
