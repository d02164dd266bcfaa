//go:build darwin || freebsd || linux

package native

import (
	"path/filepath"
	"runtime"

	"github.com/ebitengine/purego"
)

// LibraryName is the platform file name of libwebview.
var LibraryName = func() string {
	if runtime.GOOS == "darwin" {
		return "libwebview.dylib"
	}
	return "libwebview.so"
}()

func openLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
}

func lookupSymbol(lib uintptr, name string) (uintptr, error) {
	return purego.Dlsym(lib, name)
}

func platformPaths(execDir string) []string {
	if runtime.GOOS == "darwin" {
		return []string{filepath.Join(execDir, "..", "Frameworks")}
	}
	return nil
}
