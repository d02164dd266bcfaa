// Package headless implements native.Engine without a window system.
//
// Each instance runs page scripts in an embedded QuickJS interpreter
// (modernc.org/quickjs, pure Go). There is no DOM and nothing is rendered,
// but everything that crosses the engine boundary behaves as it does with
// libwebview: init scripts run before each page, Eval executes in the current
// page, bound functions appear as global functions returning promises, and
// Return settles those promises.
//
// # Event loop
//
// Run owns a FIFO job queue and executes it on the calling goroutine. Every
// operation that touches the interpreter (Navigate, Eval, Bind, Return) and
// every Dispatch is queued, so the interpreter is only ever used from the
// goroutine inside Run. Jobs queued before Run execute once it starts.
// Terminate queues a stop marker; jobs behind it are discarded.
//
// # Pages
//
// Navigate starts a fresh interpreter for the new URL. The page gets the
// bridge object, a console routed to the package logger, a stub for every
// bound name and then the init scripts in registration order. Scripts that
// fail are logged and otherwise ignored, as a browser would.
//
//	eng := headless.New()
//	w, _ := webview.New(eng)
//	w.BindFunc("add", func(a, b int) int { return a + b })
//	w.Navigate("about:blank")
//	w.Eval(`add(1, 2).then(v => console.log("sum", v))`)
package headless
