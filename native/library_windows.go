//go:build windows

package native

import (
	"golang.org/x/sys/windows"
)

// LibraryName is the platform file name of libwebview.
var LibraryName = "webview.dll"

func openLibrary(path string) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	return uintptr(h), err
}

func lookupSymbol(lib uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(lib), name)
}

func platformPaths(string) []string {
	return nil
}
