// Package watcher reports changes to the configuration file and the
// application directories so the launcher can reload and reindex without
// a restart.
//
// Raw fsnotify events are coalesced per path by a Debouncer and delivered
// as batches:
//
//	w, err := watcher.New(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	_ = w.AddFile(configPath)
//	_ = w.AddDir("/usr/share/applications", 1)
//	go w.Run(ctx)
//
//	for batch := range w.Events() {
//	    // reload or refresh
//	}
package watcher
