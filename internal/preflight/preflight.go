// Package preflight provides readiness checks for the filesystem paths and
// external tools the conversion pipeline depends on. The CLI "verify"
// command runs the full set and renders the results.
package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"appbinhub/internal/catalog"
	"appbinhub/internal/config"
	"appbinhub/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the floor for the store filesystem. Conversions stage a
// download, an extracted tree, and up to three artifacts at once.
const minFreeBytes = 1 << 30 // 1 GiB

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Package store", cfg.Paths.StoreDir),
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckFreeSpace("Store free space", cfg.Paths.StoreDir),
		CheckCatalog(cfg.CatalogPath(), cfg.LockPath()),
	}

	probeTimeout := time.Duration(cfg.Tools.ProbeTimeout) * time.Second
	caps := deps.Check(ctx, deps.DefaultRequirements(), probeTimeout)
	for _, status := range deps.Statuses(caps, deps.DefaultRequirements()) {
		result := Result{Name: status.Name, Passed: status.Available}
		if status.Available {
			result.Detail = status.Description
		} else {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable
// and writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has room for at least
// one conversion's worth of intermediate files.
func CheckFreeSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%.1f GB available", float64(free)/(1<<30))
	if free < minFreeBytes {
		return Result{Name: name, Detail: detail + " (below 1 GB floor)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckCatalog verifies the catalog document parses. A missing file passes:
// the first run creates it.
func CheckCatalog(catalogPath, lockPath string) Result {
	const name = "Catalog"
	store := catalog.NewStore(catalogPath, lockPath)
	cat, err := store.Load()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", catalogPath, err)}
	}
	return Result{Name: name, Passed: true,
		Detail: fmt.Sprintf("%d applications (%s)", len(cat.Applications), catalogPath)}
}
