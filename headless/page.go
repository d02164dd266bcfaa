package headless

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"modernc.org/quickjs"
)

// page is one loaded document: an interpreter with the bridge installed.
type page struct {
	url string
	vm  *quickjs.VM
}

const bridgeJS = `(function () {
	var calls = {};
	function format(args) {
		return Array.prototype.map.call(args, function (a) {
			if (typeof a === "string") return a;
			try { return JSON.stringify(a); } catch (e) { return String(a); }
		}).join(" ");
	}
	function level(name) {
		return function () { __webview_log(name, format(arguments)); };
	}
	globalThis.window = globalThis;
	globalThis.console = {
		log: level("info"),
		info: level("info"),
		debug: level("debug"),
		warn: level("warn"),
		error: level("error")
	};
	globalThis.location = { href: %[1]s };
	globalThis.__webview = {
		bind: function (name) {
			globalThis[name] = function () {
				var args = JSON.stringify(Array.prototype.slice.call(arguments));
				return new Promise(function (resolve, reject) {
					var seq = __webview_invoke(name, args);
					if (seq === "") {
						reject(new Error(name + " is not bound"));
						return;
					}
					calls[seq] = { resolve: resolve, reject: reject };
				});
			};
		},
		settle: function (seq, status, result) {
			var c = calls[seq];
			if (!c) return false;
			delete calls[seq];
			var value;
			try {
				value = result === "" ? undefined : JSON.parse(result);
			} catch (e) {
				c.reject(e);
				return true;
			}
			if (status === 0) c.resolve(value); else c.reject(value);
			return true;
		}
	};
})()`

func newPage(url string, memoryLimit uintptr, invoke func(name, req string) string) (*page, error) {
	vm, err := quickjs.NewVM()
	if err != nil {
		return nil, fmt.Errorf("creating QuickJS VM: %w", err)
	}
	if memoryLimit > 0 {
		vm.SetMemoryLimit(memoryLimit)
	}

	p := &page{url: url, vm: vm}
	if err := vm.RegisterFunc("__webview_invoke", invoke, false); err != nil {
		vm.Close()
		return nil, fmt.Errorf("registering bridge: %w", err)
	}
	if err := vm.RegisterFunc("__webview_log", p.log, false); err != nil {
		vm.Close()
		return nil, fmt.Errorf("registering console: %w", err)
	}
	if err := p.exec(fmt.Sprintf(bridgeJS, quote(url))); err != nil {
		vm.Close()
		return nil, fmt.Errorf("installing bridge: %w", err)
	}
	return p, nil
}

// setup installs binding stubs, then runs init scripts in order.
func (p *page) setup(bindings, scripts []string) {
	for _, name := range bindings {
		p.bind(name)
	}
	for i, js := range scripts {
		if err := p.exec(js); err != nil {
			Logger().Warn("init script failed", zap.String("url", p.url), zap.Int("index", i), zap.Error(err))
		}
	}
}

// exec evaluates js and discards the result.
func (p *page) exec(js string) error {
	v, err := p.vm.EvalValue(js, quickjs.EvalGlobal)
	if err != nil {
		return err
	}
	v.Free()
	return nil
}

func (p *page) bind(name string) {
	if err := p.exec("__webview.bind(" + quote(name) + ")"); err != nil {
		Logger().Warn("binding stub failed", zap.String("name", name), zap.Error(err))
	}
}

func (p *page) settle(seq string, status int32, result string) {
	js := "__webview.settle(" + quote(seq) + ", " + strconv.Itoa(int(status)) + ", " + quote(result) + ")"
	if err := p.exec(js); err != nil {
		Logger().Warn("settle failed", zap.String("seq", seq), zap.Error(err))
	}
}

func (p *page) log(level, msg string) {
	fields := []zap.Field{zap.String("url", p.url), zap.String("message", msg)}
	switch strings.ToLower(level) {
	case "debug":
		Logger().Debug("console", fields...)
	case "warn":
		Logger().Warn("console", fields...)
	case "error":
		Logger().Error("console", fields...)
	default:
		Logger().Info("console", fields...)
	}
}

func (p *page) close() {
	p.vm.Close()
}

// quote renders s as a JavaScript string literal.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func formatSeq(n uint64) string {
	return strconv.FormatUint(n, 10)
}
