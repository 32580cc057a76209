// Package appimage locates and extracts the squashfs filesystem embedded in
// an AppImage container and reads the desktop metadata it carries.
//
// Two extraction strategies exist: running the container's own
// --appimage-extract (valid only when the container matches the host
// architecture, because it executes the bundle) and offset-based unsquashfs
// extraction (valid across architectures, never executes the bundle). The
// extractor tries them as an explicit ordered list; the cross-architecture
// policy is encoded in which strategies make the list at all.
package appimage
