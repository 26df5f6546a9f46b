//go:build linux || windows

package desktop

import (
	"sync"

	"fyne.io/systray"

	"github.com/Aman-CERP/nexus/internal/daemon"
)

// startTray registers the icon with the session's tray and starts its
// event loop. The returned end removes it.
func startTray(entries []menuEntry, dispatch func(string)) (func(), error) {
	quit := make(chan struct{})
	start, end := systray.RunWithExternalLoop(func() {
		systray.SetTitle("nexus")
		systray.SetTooltip("nexus launcher")
		for _, e := range entries {
			if e.method == daemon.MethodExit {
				systray.AddSeparator()
			}
			item := systray.AddMenuItem(e.title, e.tooltip)
			go forward(item.ClickedCh, e.method, dispatch, quit)
		}
	}, nil)
	start()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			end()
		})
	}, nil
}
