package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"readalong/internal/config"
	"readalong/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
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

// CheckSystemDeps evaluates the external binaries for the given config.
// The aligner module probe is reported separately because a present
// interpreter does not guarantee an importable aligner.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	results := deps.CheckBinaries(deps.Requirements(cfg))
	results = append(results, deps.CheckAlignerModule(ctx, cfg.Tools.AlignerPython, alignerRootModule(cfg)))
	return results
}

// alignerRootModule trims the tool entry point down to the importable root
// package, e.g. "aeneas.tools.execute_task" probes as "aeneas".
func alignerRootModule(cfg *config.Config) string {
	module := cfg.Tools.AlignerModule
	for i, r := range module {
		if r == '.' {
			return module[:i]
		}
	}
	return module
}
