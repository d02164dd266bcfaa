package webview

import (
	"strconv"
	"strings"

	"github.com/wippyai/webview/errors"
)

// SizeHint is the window sizing policy passed to SetSize.
// The values are part of the native ABI and must not be renumbered.
type SizeHint int32

const (
	HintNone  SizeHint = 0 // width and height are the default size
	HintMin   SizeHint = 1 // width and height are the minimum bounds
	HintMax   SizeHint = 2 // width and height are the maximum bounds
	HintFixed SizeHint = 3 // window size cannot be changed by the user
)

var hintNames = [...]string{"none", "min", "max", "fixed"}

// Valid reports whether h is one of the four defined hints.
func (h SizeHint) Valid() bool {
	return h >= HintNone && h <= HintFixed
}

func (h SizeHint) String() string {
	if h.Valid() {
		return hintNames[h]
	}
	return "SizeHint(" + strconv.Itoa(int(h)) + ")"
}

// ParseSizeHint accepts a hint name (case-insensitive) or its numeric value.
func ParseSizeHint(s string) (SizeHint, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range hintNames {
		if name == n {
			return SizeHint(i), nil
		}
	}
	if v, err := strconv.Atoi(name); err == nil && SizeHint(v).Valid() {
		return SizeHint(v), nil
	}
	return HintNone, errors.InvalidEnum(errors.PhaseConfig, []string{"hint"}, s, "SizeHint")
}

// MarshalText implements encoding.TextMarshaler.
func (h SizeHint) MarshalText() ([]byte, error) {
	if !h.Valid() {
		return nil, errors.InvalidEnum(errors.PhaseConfig, []string{"hint"}, int32(h), "SizeHint")
	}
	return []byte(hintNames[h]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *SizeHint) UnmarshalText(b []byte) error {
	v, err := ParseSizeHint(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Set implements flag.Value.
func (h *SizeHint) Set(s string) error {
	return h.UnmarshalText([]byte(s))
}
