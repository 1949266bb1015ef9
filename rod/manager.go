package rod

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/linksep"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// BrowserManager owns the headless browser shared by concurrent fetches.
// Chrome never gives back memory it accumulates across page loads, so the
// browser is swapped for a fresh one after maxPages pages. A swap only
// happens while no page is open; under sustained load it is postponed
// until the fetches in flight drain.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu        sync.RWMutex // held for reading while a page is open
	browser   *rod.Browser
	launcher  *launcher.Launcher
	pageCount atomic.Int64
	maxPages  int64
	closed    atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of pages served before the browser is recycled.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// NewBrowserManager launches a headless Chrome browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(bm)
	}

	if err := bm.launchBrowser(); err != nil {
		return nil, err
	}

	return bm, nil
}

// Acquire returns the current browser and a release func that must be
// called once the caller is done with it. The browser will not be
// recycled or closed before release is called.
func (bm *BrowserManager) Acquire() (*rod.Browser, func(), error) {
	if bm.closed.Load() {
		return nil, nil, linksep.Errorf(linksep.EINVALID, "browser manager closed")
	}

	if bm.pageCount.Load() >= bm.maxPages && bm.mu.TryLock() {
		if bm.browser != nil && bm.pageCount.Load() >= bm.maxPages {
			bm.recycleBrowser()
		}
		bm.mu.Unlock()
	}

	bm.mu.RLock()
	if bm.browser == nil {
		bm.mu.RUnlock()
		return nil, nil, linksep.Errorf(linksep.EINVALID, "browser manager closed")
	}
	release := func() {
		bm.pageCount.Add(1)
		bm.mu.RUnlock()
	}
	return bm.browser, release, nil
}

// Close releases browser resources, waiting for open pages to be released.
// Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	return bm.closeBrowser()
}

// LauncherPID returns the process ID of the browser launcher, or zero once closed.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

func (bm *BrowserManager) launchBrowser() error {
	browser, l, err := launch()
	if err != nil {
		return err
	}
	bm.browser, bm.launcher = browser, l
	return nil
}

// launch starts headless Chrome with background tab throttling disabled.
func launch() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Headless(true).
		Leakless(true).
		Set("disable-dev-shm-usage").
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-backgrounding-occluded-windows")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return browser, l, nil
}

// closeBrowser must be called with mu held.
func (bm *BrowserManager) closeBrowser() error {
	err := shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = nil, nil
	return err
}

func shutdown(browser *rod.Browser, l *launcher.Launcher) error {
	var err error
	if browser != nil {
		err = browser.Close()
	}
	if l != nil {
		l.Kill()
	}
	return err
}

// recycleBrowser swaps in a fresh browser. If the launch fails the old
// browser stays in service and the swap is retried on a later Acquire.
// Must be called with mu held.
func (bm *BrowserManager) recycleBrowser() {
	browser, l, err := launch()
	if err != nil {
		return
	}
	_ = shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = browser, l
	bm.pageCount.Store(0)
}
