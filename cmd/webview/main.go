package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/webview"
	"github.com/wippyai/webview/config"
	"github.com/wippyai/webview/headless"
	"github.com/wippyai/webview/native"
)

// The native event loop must run on the main OS thread.
func init() {
	runtime.LockOSThread()
}

type options struct {
	eval        string
	timeout     time.Duration
	interactive bool
}

func main() {
	var (
		configFile  = flag.String("config", "", "Path to TOML window configuration")
		url         = flag.String("url", "", "URL to open")
		title       = flag.String("title", "", "Window title")
		width       = flag.Int("width", 0, "Window width")
		height      = flag.Int("height", 0, "Window height")
		debug       = flag.Bool("debug", false, "Enable developer tools")
		libPath     = flag.String("lib", "", "Path to libwebview (default: search WEBVIEW_PATH and the executable directory)")
		headlessRun = flag.Bool("headless", false, "Run page scripts without a window")
		eval        = flag.String("eval", "", "Script to evaluate after the page loads")
		timeout     = flag.Duration("timeout", 0, "Terminate after this long (0 waits for the window to close)")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive script console")
		hint        webview.SizeHint
	)
	flag.Var(&hint, "hint", "Size hint: none, min, max or fixed")
	flag.Parse()

	log := newLogger(*verbose)
	defer log.Sync()
	webview.SetLogger(log)
	headless.SetLogger(log)

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	// Flags given on the command line win over the file and the environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.URL = *url
		case "title":
			cfg.Title = *title
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "hint":
			cfg.Hint = hint
		case "debug":
			cfg.Debug = *debug
		case "lib":
			cfg.Library = *libPath
		case "headless":
			cfg.Headless = *headlessRun
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive && !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: -i needs a terminal on stdin")
		os.Exit(1)
	}

	opts := options{eval: *eval, timeout: *timeout, interactive: *interactive}
	if err := run(cfg, opts, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	if verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			return l
		}
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// openEngine picks the headless engine or loads libwebview.
func openEngine(cfg *config.Config) (native.Engine, func(), error) {
	if cfg.Headless {
		eng := headless.New()
		return eng, func() { eng.Close() }, nil
	}

	var (
		lib *native.Library
		err error
	)
	if cfg.Library != "" {
		lib, err = native.Load(cfg.Library)
	} else {
		lib, err = native.LoadDefault()
	}
	if err != nil {
		return nil, nil, err
	}
	return lib, func() {}, nil
}

func run(cfg *config.Config, opts options, log *zap.Logger) error {
	eng, cleanup, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	w, err := webview.New(eng, webview.WithDebug(cfg.Debug))
	if err != nil {
		return err
	}
	defer w.Close()

	if err := cfg.Apply(w); err != nil {
		return err
	}

	weak := w.Downgrade()
	var tui *console
	if opts.interactive {
		tui = newConsole(weak, cfg.URL)
	}

	if err := w.BindFunc("echo", func(args ...any) []any {
		log.Info("echo", zap.Any("args", args))
		tui.event("echo", args)
		return args
	}); err != nil {
		return err
	}
	if err := w.BindFunc("quit", func() {
		log.Info("quit requested by page")
		weak.Terminate()
	}); err != nil {
		return err
	}

	if opts.eval != "" {
		// Queued from inside the loop so it lands behind the initial navigation.
		w.Dispatch(func(v *webview.Webview) {
			v.Dispatch(func(v *webview.Webview) {
				if err := v.Eval(opts.eval); err != nil {
					log.Error("eval failed", zap.Error(err))
				}
			})
		})
	}

	if opts.timeout > 0 {
		timer := time.AfterFunc(opts.timeout, func() {
			log.Info("timeout reached", zap.Duration("timeout", opts.timeout))
			weak.Terminate()
		})
		defer timer.Stop()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer func() {
		signal.Stop(sigs)
		close(sigs)
	}()
	go func() {
		if _, ok := <-sigs; ok {
			weak.Terminate()
		}
	}()

	if tui != nil {
		go tui.run()
		defer tui.quit()
	}

	log.Debug("starting event loop",
		zap.String("url", cfg.URL),
		zap.Bool("headless", cfg.Headless))
	return w.Run()
}
