// Package mediatypes classifies filesystem paths into media kinds based
// on their file extension.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains primitive types
// and pure functions with no dependencies beyond the standard library.
//
// # Kinds
//
// The package defines a Kind enum for categorizing media files:
//
//	mediatypes.KindImage // Supported image formats (jpg, png, heic, etc.)
//	mediatypes.KindVideo // Supported video formats (mp4, mkv, avi, etc.)
//	mediatypes.KindOther // Unrecognized or unsupported files
//
// # Classification
//
// A Classifier is built from two disjoint extension sets. Use KindFor to
// determine the kind of a file from its path:
//
//	c := mediatypes.DefaultClassifier()
//	switch c.KindFor(path) {
//	case mediatypes.KindImage:
//	    // Handle image
//	case mediatypes.KindVideo:
//	    // Handle video
//	}
//
// Extension sets are configurable per Classifier value rather than package
// globals, so tests can run with distinct sets side by side.
package mediatypes
