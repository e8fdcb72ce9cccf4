// Package ui hosts the embedded view: an app-mode Chromium window pointed
// at the local control service. It owns the UI event loop, forwards bridge
// messages synchronously to the registered handler, and is the only way to
// inject script back into the hosted page.
package ui

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"
)

// BridgeFunc is the function the host exposes into the hosted page's global
// scope; the page calls it with one JSON-encoded bridge message.
const BridgeFunc = "liftoffInvoke"

// Title derives the window title from the application name.
func Title(appName string) string {
	return appName + " Installer"
}

// Config fixes the window parameters.
type Config struct {
	Title  string
	URL    string
	Width  int
	Height int
	Debug  bool
}

// View is the running embedded view.
type View struct {
	cfg     Config
	logger  *zap.Logger
	browser *rod.Browser
	page    *rod.Page
}

// New launches the view window pointed at cfg.URL. The window uses the
// fixed configured size; Chromium app windows cannot be made truly
// non-resizable, so the bounds are pinned after launch instead.
func New(cfg Config, logger *zap.Logger) (*View, error) {
	controlURL, err := launcher.New().
		Headless(false).
		Devtools(cfg.Debug).
		Set(flags.Flag("app"), cfg.URL).
		Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", cfg.Width, cfg.Height)).
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch embedded view: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect embedded view: %w", err)
	}

	page, err := appPage(browser, cfg.URL)
	if err != nil {
		_ = browser.Close()
		return nil, err
	}

	if err := page.WaitLoad(); err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("load hosted page: %w", err)
	}

	v := &View{cfg: cfg, logger: logger, browser: browser, page: page}
	if err := v.pinWindow(); err != nil {
		_ = browser.Close()
		return nil, err
	}
	if err := v.Eval(fmt.Sprintf("document.title = %q", cfg.Title)); err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("set window title: %w", err)
	}
	return v, nil
}

// appPage finds the window the app flag opened, creating a page only if the
// browser came up without one.
func appPage(browser *rod.Browser, url string) (*rod.Page, error) {
	deadline := time.Now().Add(10 * time.Second)
	for {
		pages, err := browser.Pages()
		if err != nil {
			return nil, fmt.Errorf("list view pages: %w", err)
		}
		if len(pages) > 0 {
			return pages[0], nil
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("open hosted page: %w", err)
	}
	return page, nil
}

// windowBounds builds the CDP bounds for the configured window size.
func windowBounds(cfg Config) *proto.BrowserBounds {
	return &proto.BrowserBounds{
		Width:       &cfg.Width,
		Height:      &cfg.Height,
		WindowState: proto.BrowserWindowStateNormal,
	}
}

// pinWindow re-applies the configured bounds to the OS window.
func (v *View) pinWindow() error {
	win, err := proto.BrowserGetWindowForTarget{TargetID: v.page.TargetID}.Call(v.page)
	if err != nil {
		return fmt.Errorf("resolve view window: %w", err)
	}
	err = proto.BrowserSetWindowBounds{
		WindowID: win.WindowID,
		Bounds:   windowBounds(v.cfg),
	}.Call(v.page)
	if err != nil {
		return fmt.Errorf("pin view window bounds: %w", err)
	}
	return nil
}

// Run exposes the bridge function and blocks until the window is destroyed.
// Every bridge message is forwarded synchronously to onMessage.
func (v *View) Run(onMessage func(msg string)) error {
	stop, err := v.page.Expose(BridgeFunc, func(msg gson.JSON) (interface{}, error) {
		onMessage(msg.Str())
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("expose bridge function: %w", err)
	}
	defer func() { _ = stop() }()

	v.logger.Debug("embedded view running",
		zap.String("url", v.cfg.URL),
		zap.String("title", v.cfg.Title))

	wait := v.browser.EachEvent(func(e *proto.TargetTargetDestroyed) bool {
		return e.TargetID == v.page.TargetID
	})
	wait()

	v.logger.Info("embedded view closed")
	return v.browser.Close()
}

// Eval evaluates script inside the hosted page.
func (v *View) Eval(script string) error {
	_, err := v.page.Evaluate(&rod.EvalOptions{
		JS:           fmt.Sprintf("() => { %s }", script),
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return fmt.Errorf("evaluate script in hosted page: %w", err)
	}
	return nil
}
