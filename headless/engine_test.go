package headless_test

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/webview"
	"github.com/wippyai/webview/cstring"
	"github.com/wippyai/webview/headless"
	"github.com/wippyai/webview/native"
)

func newView(t *testing.T) (*headless.Engine, *webview.Webview) {
	t.Helper()
	eng := headless.New()
	w, err := webview.New(eng)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		w.Close()
		eng.Close()
	})
	return eng, w
}

// runWithDeadline runs the loop, terminating it if the test stalls.
func runWithDeadline(t *testing.T, w *webview.Webview) {
	t.Helper()
	weak := w.Downgrade()
	timer := time.AfterFunc(5*time.Second, func() { weak.Terminate() })
	defer timer.Stop()
	if err := w.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestEngine_BoundFunctionResolves(t *testing.T) {
	eng, w := newView(t)

	got := 0
	if err := w.BindFunc("add", func(a, b int) int { return a + b }); err != nil {
		t.Fatal(err)
	}
	if err := w.BindFunc("report", func(sum int) {
		got = sum
		w.Terminate()
	}); err != nil {
		t.Fatal(err)
	}
	w.Navigate("about:blank")
	w.Dispatch(func(v *webview.Webview) {
		v.Eval(`add(2, 3).then(function (s) { report(s); })`)
	})

	runWithDeadline(t, w)

	if got != 5 {
		t.Fatalf("promise resolved with %d, want 5", got)
	}
	r, ok := eng.Result(w.Handle(), "1")
	if !ok {
		t.Fatal("no result recorded for the first call")
	}
	if r.Status != 0 || r.Value != "5" {
		t.Errorf("result = %+v", r)
	}
}

func TestEngine_BoundFunctionRejects(t *testing.T) {
	_, w := newView(t)

	var got string
	w.BindFunc("fail", func() error { return errString("nope") })
	w.BindFunc("report", func(msg string) {
		got = msg
		w.Terminate()
	})
	w.Navigate("about:blank")
	w.Dispatch(func(v *webview.Webview) {
		v.Eval(`fail().catch(function (e) { report(String(e)); })`)
	})

	runWithDeadline(t, w)

	if got != "nope" {
		t.Errorf("rejection = %q, want %q", got, "nope")
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestEngine_InitScriptsRunBeforePage(t *testing.T) {
	eng, w := newView(t)

	var value int
	var href string
	w.Init("globalThis.ready = 41")
	w.Init("globalThis.ready += 1")
	w.BindFunc("report", func(v int, h string) { value, href = v, h })
	w.Navigate("https://example.test/app")
	w.Dispatch(func(v *webview.Webview) {
		v.Eval("report(ready, location.href)")
		v.Terminate()
	})

	runWithDeadline(t, w)

	if value != 42 {
		t.Errorf("ready = %d, want 42", value)
	}
	if href != "https://example.test/app" {
		t.Errorf("href = %q", href)
	}
	st, _ := eng.State(w.Handle())
	if st.Pages != 1 {
		t.Errorf("pages = %d, want 1", st.Pages)
	}
	if st.URL != "https://example.test/app" {
		t.Errorf("url = %q", st.URL)
	}
}

func TestEngine_NavigateResetsPage(t *testing.T) {
	eng, w := newView(t)

	var seen []string
	w.BindFunc("report", func(s string) { seen = append(seen, s) })
	w.Navigate("about:blank")
	w.Dispatch(func(v *webview.Webview) {
		v.Eval(`globalThis.leftover = "x"; report(typeof leftover)`)
		v.Navigate("about:second")
		v.Eval(`report(typeof leftover)`)
		v.Terminate()
	})

	runWithDeadline(t, w)

	if len(seen) != 2 || seen[0] != "string" || seen[1] != "undefined" {
		t.Errorf("seen = %v, want [string undefined]", seen)
	}
	if st, _ := eng.State(w.Handle()); st.Pages != 2 {
		t.Errorf("pages = %d, want 2", st.Pages)
	}
}

func TestEngine_ScriptErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	headless.SetLogger(zap.New(core))
	defer headless.SetLogger(zap.NewNop())

	_, w := newView(t)
	w.Dispatch(func(v *webview.Webview) {
		v.Eval(`console.warn("careful", {a: 1})`)
		v.Eval(`throw new Error("broken")`)
		v.Terminate()
	})

	runWithDeadline(t, w)

	warned := logs.FilterMessage("console").FilterField(zap.String("message", `careful {"a":1}`))
	if warned.Len() != 1 {
		t.Errorf("console.warn not logged: %v", logs.All())
	}
	if logs.FilterMessage("script error").Len() != 1 {
		t.Error("script error not logged")
	}
}

func TestEngine_WindowState(t *testing.T) {
	eng := headless.New()
	defer eng.Close()
	w, err := webview.New(eng, webview.WithDebug(true), webview.WithParent(7))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	w.SetTitle("Headless")
	w.SetSize(800, 600, webview.HintFixed)
	win, _ := w.Window()
	if win == 0 {
		t.Error("window reference is zero")
	}

	st, ok := eng.State(w.Handle())
	if !ok {
		t.Fatal("instance not found")
	}
	want := headless.State{Title: "Headless", Width: 800, Height: 600, Hint: 3, Parent: 7, Debug: true}
	if st != want {
		t.Errorf("state = %+v, want %+v", st, want)
	}
}

func TestEngine_TerminateDiscardsLaterJobs(t *testing.T) {
	eng := headless.New()
	defer eng.Close()
	h := eng.Create(false, 0)

	var ran []int
	eng.Dispatch(h, func(native.Handle, uintptr) { ran = append(ran, 1) }, 0)
	eng.Terminate(h)
	eng.Dispatch(h, func(native.Handle, uintptr) { ran = append(ran, 2) }, 0)
	eng.Run(h)

	if len(ran) != 1 || ran[0] != 1 {
		t.Errorf("ran = %v, want [1]", ran)
	}
	eng.Destroy(h)
}

func TestEngine_DestroyAndUnknownHandles(t *testing.T) {
	eng := headless.New()
	h := eng.Create(false, 0)
	if h == 0 {
		t.Fatal("create returned 0")
	}
	if eng.Len() != 1 {
		t.Fatalf("len = %d, want 1", eng.Len())
	}

	eng.Destroy(h)
	eng.Destroy(h)
	if eng.Len() != 0 {
		t.Errorf("len = %d after destroy", eng.Len())
	}

	url, _ := cstring.Encode("url", "about:blank")
	eng.Navigate(h, url.Ptr())
	eng.Terminate(h)
	eng.Run(h)
	if eng.GetWindow(h) != 0 {
		t.Error("destroyed instance still has a window")
	}
	if _, ok := eng.State(h); ok {
		t.Error("destroyed instance still has state")
	}

	if err := eng.Close(); err != nil {
		t.Fatal(err)
	}
	if eng.Create(false, 0) != 0 {
		t.Error("create succeeded on a closed engine")
	}
}

func TestEngine_ReturnFromAnotherGoroutine(t *testing.T) {
	eng, w := newView(t)
	weak := w.Downgrade()

	var got string
	w.Bind("slow", func(seq, req string) {
		go func() {
			time.Sleep(10 * time.Millisecond)
			weak.Return(seq, 0, strings.ToUpper(req))
		}()
	})
	w.BindFunc("report", func(v []string) {
		got = strings.Join(v, ",")
		w.Terminate()
	})
	w.Navigate("about:blank")
	w.Dispatch(func(v *webview.Webview) {
		v.Eval(`slow("a", "b").then(function (r) { report(r); })`)
	})

	runWithDeadline(t, w)

	if got != "A,B" {
		t.Errorf("got %q, want %q", got, "A,B")
	}
	if len(eng.Results(w.Handle())) < 1 {
		t.Error("no results recorded")
	}
}
