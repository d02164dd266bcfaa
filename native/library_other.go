//go:build !darwin && !freebsd && !linux && !windows

package native

import (
	"github.com/wippyai/webview/errors"
)

// LibraryName is empty on platforms without a libwebview build.
var LibraryName = ""

// Library is unavailable on this platform.
type Library struct{}

// Load always fails on this platform.
func Load(path string) (*Library, error) {
	return nil, errors.Load("open "+path, errors.InvalidInput(errors.PhaseLoad, "unsupported platform"))
}

// LoadDefault always fails on this platform.
func LoadDefault() (*Library, error) {
	return Load(LibraryName)
}

// SearchPaths returns nil on this platform.
func SearchPaths() []string {
	return nil
}

var _ Engine = (*Library)(nil)

func (*Library) Path() string { return "" }

func (*Library) Create(bool, Window) Handle { return 0 }
func (*Library) Run(Handle) {}
func (*Library) Terminate(Handle) {}
func (*Library) Destroy(Handle) {}
func (*Library) Navigate(Handle, *byte) {}
func (*Library) SetTitle(Handle, *byte) {}
func (*Library) SetSize(Handle, int32, int32, int32) {}
func (*Library) GetWindow(Handle) Window { return 0 }
func (*Library) Init(Handle, *byte) {}
func (*Library) Eval(Handle, *byte) {}
func (*Library) Dispatch(Handle, DispatchFunc, uintptr) {}
func (*Library) Bind(Handle, *byte, BindFunc, uintptr) {}
func (*Library) Return(Handle, *byte, int32, *byte) {}
