// Package discovery finds newly published AppImage releases and turns them
// into candidate catalog records. Two collaborators exist: a GitHub watcher
// that inspects the latest release of configured repositories for AppImage
// assets, and a direct watcher that queries JSON version endpoints, with
// per-architecture URL expansion for apps that publish one bundle per
// architecture. Discovery never downloads bundles; it records URLs, sizes
// from HEAD probes, and version identity for the reconciler to act on.
package discovery
