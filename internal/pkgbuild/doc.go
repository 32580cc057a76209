// Package pkgbuild synthesizes distribution packages from an extracted
// AppImage filesystem tree. Three independent builders exist: dpkg-deb for
// Debian packages, rpmbuild for RPM packages, and a built-in gzip tarball
// that serves as the guaranteed fallback when neither native tool is
// installed. Each builder is idempotent for identical inputs and validates
// its own artifact before returning it.
package pkgbuild
