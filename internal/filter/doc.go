// Package filter implements the transform collaborator: a sepia tone filter
// that decodes a fetched image (PNG, JPEG, GIF or WebP), optionally bounds
// its size, tints it and re-encodes it as PNG.
package filter
