package atlaskit

import "log/slog"

// AtlasInfo summarizes one atlas for debug output.
type AtlasInfo struct {
	Index       int
	Name        string
	Entries     int
	Version     uint64
	Utilization float64
	CanvasBytes int
}

// Infos returns a summary of every non-nil atlas of the library.
func (l *Library) Infos() []AtlasInfo {
	infos := make([]AtlasInfo, 0, len(l.atlases))
	for _, a := range l.atlases {
		if a == nil {
			continue
		}
		infos = append(infos, AtlasInfo{
			Index:       a.index,
			Name:        a.name,
			Entries:     len(a.entries),
			Version:     a.version,
			Utilization: a.Utilization(),
			CanvasBytes: len(a.pixels),
		})
	}
	return infos
}

// LogStats reports cache counters at debug level. It does nothing unless
// debug mode is on, so it can be called every frame.
func LogStats(backend string, stats CacheStats) {
	if !DebugMode() {
		return
	}
	Logger().Debug("atlaskit: upload cache stats",
		slog.String("backend", backend),
		slog.Uint64("hits", stats.Hits),
		slog.Uint64("creations", stats.Creations),
		slog.Uint64("destructions", stats.Destructions),
		slog.Uint64("failures", stats.Failures),
		slog.Uint64("rebuilds", stats.Rebuilds),
	)
}

// LogLibrary reports every atlas summary at debug level when debug mode is on.
func LogLibrary(l *Library) {
	if !DebugMode() || l == nil {
		return
	}
	for _, info := range l.Infos() {
		Logger().Debug("atlaskit: atlas",
			"index", info.Index, "name", info.Name, "entries", info.Entries,
			"version", info.Version, "utilization", info.Utilization,
			"canvas_bytes", info.CanvasBytes)
	}
}
