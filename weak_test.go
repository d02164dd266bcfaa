package webview

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/webview/errors"
	"github.com/wippyai/webview/native"
)

func TestWeak_ZeroValueExpired(t *testing.T) {
	var weak Weak
	if weak.Alive() {
		t.Error("zero Weak reports alive")
	}
	if _, err := weak.Upgrade(); !stderrors.Is(err, errors.ErrHandleExpired) {
		t.Errorf("expected handle_expired, got %v", err)
	}
}

func TestWeak_ExpiredAfterRelease(t *testing.T) {
	eng, w := newTestView(t)
	weak := w.Downgrade()
	if !weak.Alive() {
		t.Fatal("weak not alive while owner exists")
	}
	w.Close()
	if weak.Alive() {
		t.Fatal("weak alive after last owner closed")
	}
	before := len(eng.Calls())

	_, upErr := weak.Upgrade()
	_, winErr := weak.Window()
	tests := []struct {
		name  string
		err   error
		phase errors.Phase
	}{
		{"upgrade", upErr, errors.PhaseHandle},
		{"terminate", weak.Terminate(), errors.PhaseHandle},
		{"dispatch", weak.Dispatch(func(*Webview) { t.Error("dispatch ran") }), errors.PhaseDispatch},
		{"bind", weak.Bind("f", func(string, string) {}), errors.PhaseBind},
		{"bind func", weak.BindFunc("f", func() {}), errors.PhaseBind},
		{"window", winErr, errors.PhaseNative},
		{"return", weak.Return("1", 0, "null"), errors.PhaseReturn},
		{"eval", weak.Eval("1"), errors.PhaseNative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !stderrors.Is(tt.err, errors.ErrHandleExpired) {
				t.Fatalf("expected handle_expired, got %v", tt.err)
			}
			target := &errors.Error{Phase: tt.phase, Kind: errors.KindHandleExpired}
			if !stderrors.Is(tt.err, target) {
				t.Errorf("phase mismatch: %v", tt.err)
			}
		})
	}
	if n := len(eng.Calls()); n != before {
		t.Errorf("expired weak reached the engine: %d calls", n-before)
	}
}

func TestWeak_AliveActsAsOwner(t *testing.T) {
	eng, w := newTestView(t)
	defer w.Close()
	weak := w.Downgrade()

	if err := weak.Eval("1 + 1"); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if err := weak.Return("3", 0, "42"); err != nil {
		t.Fatalf("Return: %v", err)
	}
	win, err := weak.Window()
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	direct, _ := w.Window()
	if win != direct {
		t.Errorf("weak window %#x != owner window %#x", win, direct)
	}

	ran := false
	if err := weak.Dispatch(func(v *Webview) { ran = v.Handle() == w.Handle() }); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	eng.Drain(w.Handle())
	if !ran {
		t.Error("dispatch through weak did not run against the same instance")
	}

	if err := weak.Terminate(); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if n := eng.Count(native.SymDestroy); n != 0 {
		t.Error("weak operations released the owner's reference")
	}
	if got := w.ctl.strong.Load(); got != 1 {
		t.Errorf("strong count = %d after weak ops, want 1", got)
	}
}

func TestWeak_UpgradeKeepsAlive(t *testing.T) {
	eng, w := newTestView(t)
	weak := w.Downgrade()

	up, err := weak.Upgrade()
	if err != nil {
		t.Fatalf("Upgrade: %v", err)
	}
	w.Close()
	if !weak.Alive() {
		t.Fatal("upgraded reference did not keep the instance alive")
	}
	if eng.Count(native.SymDestroy) != 0 {
		t.Fatal("destroyed while an upgraded reference exists")
	}

	up.Close()
	if weak.Alive() {
		t.Error("still alive after closing the upgraded reference")
	}
	if eng.Count(native.SymDestroy) != 1 {
		t.Errorf("destroy count = %d, want 1", eng.Count(native.SymDestroy))
	}
	if _, err := weak.Upgrade(); err == nil {
		t.Error("upgrade revived a released instance")
	}
}
