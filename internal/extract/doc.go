// Package extract derives per-file metadata for discovered media:
// filesystem attributes, pixel dimensions, EXIF tags, content digests and
// perceptual fingerprints for images; stream-probed dimensions and sampled
// frames for videos.
//
// Extraction degrades gracefully. A file whose EXIF block is unreadable
// still gets a digest and size; a video whose probe tool is missing still
// gets its filesystem fields. Only a failure to stat or read the file
// itself is reported as an error, and the caller treats that as a
// per-file failure, never as fatal to the scan.
//
// Video probing and frame sampling shell out to ffprobe and ffmpeg. Every
// invocation is individually time-bounded; absence of the tools is a
// recoverable condition.
package extract
