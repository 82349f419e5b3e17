// Package catalog reads and writes the game manifest exchanged with
// discovery: a JSON array of games with their artwork URLs and, once the
// pipeline has run, their local artwork paths.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/artcache/internal/model"
)

type entry struct {
	Name                    string     `json:"name"`
	Source                  string     `json:"source,omitempty"`
	AppID                   string     `json:"app_id,omitempty"`
	InstallPath             string     `json:"install_path,omitempty"`
	ExecutablePath          string     `json:"executable_path,omitempty"`
	LastPlayed              *time.Time `json:"last_played,omitempty"`
	PosterURL               string     `json:"poster_url,omitempty"`
	HeroURLs                []string   `json:"hero_urls,omitempty"`
	SelectedBackgroundIndex int        `json:"selected_background_index,omitempty"`

	LocalPosterPath string   `json:"local_poster_path,omitempty"`
	CoverArtPath    string   `json:"cover_art_path,omitempty"`
	LocalHeroPaths  []string `json:"local_hero_paths,omitempty"`
}

// Decode reads a manifest. Local paths present in the input are restored so
// a previous run's output can be fed back in.
func Decode(r io.Reader) ([]*model.Game, error) {
	var entries []entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	games := make([]*model.Game, 0, len(entries))
	for _, e := range entries {
		g := &model.Game{
			Name:                    e.Name,
			Source:                  e.Source,
			AppID:                   e.AppID,
			InstallPath:             e.InstallPath,
			ExecutablePath:          e.ExecutablePath,
			LastPlayed:              e.LastPlayed,
			PosterURL:               e.PosterURL,
			HeroURLs:                e.HeroURLs,
			SelectedBackgroundIndex: e.SelectedBackgroundIndex,
		}
		g.RestoreLocalPaths(e.LocalPosterPath, e.CoverArtPath, e.LocalHeroPaths)
		games = append(games, g)
	}
	return games, nil
}

// Encode writes games, including their local artwork paths, as an indented
// JSON array.
func Encode(w io.Writer, games []*model.Game) error {
	entries := make([]entry, 0, len(games))
	for _, g := range games {
		if g == nil {
			continue
		}
		entries = append(entries, entry{
			Name:                    g.Name,
			Source:                  g.Source,
			AppID:                   g.AppID,
			InstallPath:             g.InstallPath,
			ExecutablePath:          g.ExecutablePath,
			LastPlayed:              g.LastPlayed,
			PosterURL:               g.PosterURL,
			HeroURLs:                g.HeroURLs,
			SelectedBackgroundIndex: g.SelectedBackgroundIndex,
			LocalPosterPath:         g.PosterPath(),
			CoverArtPath:            g.CoverArtPath(),
			LocalHeroPaths:          g.HeroPaths(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

// Load reads a manifest file.
func Load(path string) ([]*model.Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Save writes a manifest file, creating its directory if needed.
func Save(path string, games []*model.Game) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, games); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
