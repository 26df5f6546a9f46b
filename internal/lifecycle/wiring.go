package lifecycle

import (
	"github.com/Aman-CERP/nexus/internal/config"
	"github.com/Aman-CERP/nexus/internal/daemon"
	"github.com/Aman-CERP/nexus/internal/exclude"
	"github.com/Aman-CERP/nexus/internal/search"
	"github.com/Aman-CERP/nexus/internal/source"
)

// SourcesFor returns the index sources selected by cfg: every application
// directory, every file directory and, when enabled, the built-in system
// actions. All sources share one exclusion matcher.
func SourcesFor(cfg *config.Config) []source.Source {
	matcher := exclude.New(cfg.Index.Exclude...)
	depth := func(d config.DirConfig) int {
		if d.MaxDepth > 0 {
			return d.MaxDepth
		}
		return cfg.Index.MaxDepth
	}

	var sources []source.Source
	for _, d := range cfg.Index.AppDirs {
		sources = append(sources, source.AppDir{
			Root:     config.ResolveDir(d.Path),
			MaxDepth: depth(d),
			Exclude:  matcher,
		})
	}
	for _, d := range cfg.Index.FileDirs {
		sources = append(sources, source.Folder{
			Root:     config.ResolveDir(d.Path),
			MaxDepth: depth(d),
			Exclude:  matcher,
		})
	}
	if cfg.Index.SystemActions {
		sources = append(sources, source.System{})
	}
	return sources
}

// SearchOptions maps the search section of cfg onto coordinator options.
func SearchOptions(cfg *config.Config) search.Options {
	return search.Options{
		MaxResults: cfg.Search.MaxResults,
		Fuzzy:      cfg.Search.Fuzzy,
		CacheSize:  cfg.Search.CacheSize,
		CacheTTL:   cfg.CacheTTL(),
	}
}

// DaemonConfig returns the IPC paths, honouring overrides from cfg.
func DaemonConfig(cfg *config.Config) daemon.Config {
	d := daemon.DefaultConfig()
	if cfg.IPC.SocketPath != "" {
		d.SocketPath = config.ResolveDir(cfg.IPC.SocketPath)
	}
	if cfg.IPC.PIDPath != "" {
		d.PIDPath = config.ResolveDir(cfg.IPC.PIDPath)
	}
	if cfg.IPC.LockPath != "" {
		d.LockPath = config.ResolveDir(cfg.IPC.LockPath)
	}
	return d
}
