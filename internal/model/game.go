package model

import (
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"
)

// SourceSteam is the Source value discovery uses for Steam library entries.
const SourceSteam = "Steam"

// Game represents an installed game found by discovery, together with the
// artwork URLs resolved for it and the local cache paths filled in by the
// download pipeline.
//
// The URL fields are set once by discovery before the pipeline runs and are
// treated as read-only afterwards. The local path fields are written by
// pipeline workers and are therefore only reachable through methods that
// hold the game's lock.
//
// A Game must not be copied after first use.
//
// Example:
//
//	game := &Game{
//	    Name:      "Half-Life 2",
//	    Source:    SourceSteam,
//	    AppID:     "220",
//	    PosterURL: "https://cdn.example.com/grid/220.png",
//	    HeroURLs:  []string{"https://cdn.example.com/hero/220.jpg"},
//	}
//	game.Key() // "steam_220"
type Game struct {
	// Name is the display name. Cache keys are derived from it, so a game
	// without a name never receives artwork.
	Name string

	// Source is the store the game was discovered in ("Steam", "Epic", ...).
	Source string

	// AppID is the store-specific identifier, if the store has one.
	AppID string

	// InstallPath is the game's installation directory.
	InstallPath string

	// ExecutablePath is the launcher target.
	ExecutablePath string

	// LastPlayed is when the game was last launched from the launcher.
	LastPlayed *time.Time

	// PosterURL is the remote URL of the single poster image.
	// Empty means no poster was resolved.
	PosterURL string

	// HeroURLs are the remote URLs of the background images, in the order
	// the provider returned them.
	HeroURLs []string

	// SelectedBackgroundIndex is the background currently shown for this
	// game in the launcher.
	SelectedBackgroundIndex int

	mu              sync.Mutex
	localPosterPath string
	coverArtPath    string
	localHeroPaths  []string
}

// Key returns the unique key identifying this game across discovery sources.
//
// Steam games with an app id are keyed by it ("steam_220"); everything else
// is keyed by its normalised name ("game_Half-Life 2").
func (g *Game) Key() string {
	if g.AppID != "" && g.Source == SourceSteam {
		return "steam_" + g.AppID
	}
	return "game_" + NormalizeName(g.Name)
}

// HasArtwork returns true if at least one artwork URL is set.
func (g *Game) HasArtwork() bool {
	if g.PosterURL != "" {
		return true
	}
	for _, u := range g.HeroURLs {
		if u != "" {
			return true
		}
	}
	return false
}

// SetPosterPath records the local poster path. The cover art path used by
// grid views mirrors it.
//
// Each game has at most one poster job per run, so the last write wins.
func (g *Game) SetPosterPath(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.localPosterPath = path
	g.coverArtPath = path
}

// PosterPath returns the local poster path, or "" if none was cached.
func (g *Game) PosterPath() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.localPosterPath
}

// CoverArtPath returns the path grid views should display.
func (g *Game) CoverArtPath() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.coverArtPath
}

// AddHeroPath appends a local background path unless it is already present.
// It reports whether the path was added.
func (g *Game) AddHeroPath(path string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if slices.Contains(g.localHeroPaths, path) {
		return false
	}
	g.localHeroPaths = append(g.localHeroPaths, path)
	return true
}

// HeroPaths returns a copy of the local background paths.
func (g *Game) HeroPaths() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.localHeroPaths)
}

// RestoreLocalPaths sets previously cached local paths, e.g. when a manifest
// already carries results from an earlier run. Empty values are ignored.
func (g *Game) RestoreLocalPaths(poster, coverArt string, heroes []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if poster != "" {
		g.localPosterPath = poster
	}
	if coverArt != "" {
		g.coverArtPath = coverArt
	}
	for _, h := range heroes {
		if h != "" && !slices.Contains(g.localHeroPaths, h) {
			g.localHeroPaths = append(g.localHeroPaths, h)
		}
	}
}

// editionSuffix matches trademark symbols and edition suffixes that image
// providers do not know about.
var editionSuffix = regexp.MustCompile(`(?i)™|®|©|:.*Edition|:.*of the Year.*| GOTY.*`)

// NormalizeName strips trademark symbols and edition suffixes from a game
// name so that "Skyrim: Special Edition" and "Skyrim" share a key.
func NormalizeName(name string) string {
	return strings.TrimSpace(editionSuffix.ReplaceAllString(name, ""))
}
