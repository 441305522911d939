package types

// Category as returned by /api/categories and /api/archives/{id}/categories.
type Category struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Pinned   Numeric  `json:"pinned"`
	LastUsed Numeric  `json:"last_used"`
	Search   string   `json:"search,omitempty"`
	Archives []string `json:"archives,omitempty"`
}

// TagStat is one entry of /api/database/stats.
type TagStat struct {
	Namespace string  `json:"namespace"`
	Text      string  `json:"text"`
	Weight    Numeric `json:"weight"`
}

// Label renders the tag the way the search box expects it.
func (t TagStat) Label() string {
	if t.Namespace != "" {
		return t.Namespace + ":" + t.Text
	}
	return t.Text
}

// ShinobuStatus reports the server's background file watcher.
type ShinobuStatus struct {
	IsAlive Numeric `json:"is_alive"`
	PID     Numeric `json:"pid"`
}

func (s ShinobuStatus) Alive() bool {
	return s.IsAlive != 0
}

type CleanDatabaseResult struct {
	Deleted  Numeric `json:"deleted"`
	Unlinked Numeric `json:"unlinked"`
}

type TempFolderResult struct {
	NewSize string `json:"newsize"`
}

// PluginResult is what a metadata plugin proposes for an archive.
type PluginResult struct {
	Title   string `json:"title"`
	NewTags string `json:"new_tags"`
}

// ScriptResult is the Minion result of a queued script plugin.
type ScriptResult struct {
	Success Numeric `json:"success"`
	Error   string  `json:"error,omitempty"`
	Data    any     `json:"data,omitempty"`
}

// ThumbnailResult is the Minion result of a thumbnail regeneration job.
type ThumbnailResult struct {
	Errors any `json:"errors"`
}

type ArchiveMetadata struct {
	ArcID    string  `json:"arcid"`
	Title    string  `json:"title"`
	Tags     string  `json:"tags"`
	Progress Numeric `json:"progress"`
	Pages    Numeric `json:"pagecount"`
}

// Release is the subset of the GitHub release payload used by the version check.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// ServerInfo is the subset of /api/info the console relies on.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Motd    string `json:"motd,omitempty"`
}
