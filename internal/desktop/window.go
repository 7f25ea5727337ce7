//go:build desktop

package desktop

import (
	"context"
	"net/url"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// Available reports whether this build includes the desktop window.
func Available() bool {
	return true
}

// Presenter shows the web UI in a wails window. Calls made before the window
// exists are replayed once it starts.
type Presenter struct {
	opts  Options
	proxy *pageProxy

	mu      sync.Mutex
	ctx     context.Context
	pending []func(context.Context)
}

// NewPresenter creates the presenter. The window opens in Run.
func NewPresenter(opts Options) *Presenter {
	opts.setDefaults()
	return &Presenter{opts: opts, proxy: newPageProxy()}
}

// Run opens the window and blocks until it closes or ctx is done. On macOS
// it must be called from the main goroutine.
func (p *Presenter) Run(ctx context.Context, host Host) error {
	return wails.Run(&options.App{
		Title:  p.opts.Title,
		Width:  p.opts.Width,
		Height: p.opts.Height,
		AssetServer: &assetserver.Options{
			Handler: p.proxy,
		},
		OnStartup: func(wctx context.Context) {
			runtime.EventsOn(wctx, publishDataEvent, func(data ...interface{}) {
				if len(data) == 0 {
					return
				}
				body, ok := data[0].(string)
				if !ok {
					logging.Warn("Desktop", "Ignoring publishData message of type %T", data[0])
					return
				}
				host.PostMessage(publishDataEvent, body)
			})
			p.started(wctx)

			go func() {
				<-ctx.Done()
				runtime.Quit(wctx)
			}()
		},
		OnDomReady: func(wctx context.Context) {
			runtime.WindowExecJS(wctx, bridgeScript)
			if p.proxy.Target() != nil {
				host.PageLoaded()
			}
		},
		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId: p.opts.InstanceID,
			OnSecondInstanceLaunch: func(data options.SecondInstanceData) {
				for _, u := range callbackArgs(data.Args) {
					host.OpenURL(u)
				}
			},
		},
	})
}

func (p *Presenter) started(wctx context.Context) {
	p.mu.Lock()
	p.ctx = wctx
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, fn := range pending {
		fn(wctx)
	}
}

// do runs fn with the window context, now or once the window has started.
func (p *Presenter) do(fn func(context.Context)) {
	p.mu.Lock()
	wctx := p.ctx
	if wctx == nil {
		p.pending = append(p.pending, fn)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	fn(wctx)
}

// Load implements the shell's Presenter.
func (p *Presenter) Load(endpoint string) {
	u, err := url.Parse(endpoint)
	if err != nil {
		logging.Error("Desktop", err, "Cannot load %s", endpoint)
		return
	}
	p.proxy.SetTarget(u)
	p.do(func(wctx context.Context) {
		runtime.WindowReloadApp(wctx)
	})
}

// SetAccessToken implements the shell's Presenter.
func (p *Presenter) SetAccessToken(token string) {
	script := setAccessTokenScript(token)
	p.do(func(wctx context.Context) {
		runtime.WindowExecJS(wctx, script)
	})
}

// ShowOEmbed implements the shell's Presenter.
func (p *Presenter) ShowOEmbed(target string) {
	p.do(func(wctx context.Context) {
		runtime.BrowserOpenURL(wctx, target)
	})
}

// ShowError implements the shell's Presenter. The dialog is modal, so it is
// shown off the caller's goroutine.
func (p *Presenter) ShowError(title, message string) {
	p.do(func(wctx context.Context) {
		go func() {
			_, err := runtime.MessageDialog(wctx, runtime.MessageDialogOptions{
				Type:    runtime.ErrorDialog,
				Title:   title,
				Message: message,
			})
			if err != nil {
				logging.Warn("Desktop", "Could not show error dialog: %v", err)
			}
		}()
	})
}
