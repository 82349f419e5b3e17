package model

import (
	"fmt"
	"sync"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Portal 2", "Portal 2"},
		{"The Elder Scrolls V: Skyrim Special Edition", "The Elder Scrolls V"},
		{"Witcher 3 GOTY", "Witcher 3"},
		{"Fallout 3: Game of the Year Edition", "Fallout 3"},
		{"DOOM®", "DOOM"},
		{"Tom Clancy's™ Rainbow Six", "Tom Clancy's Rainbow Six"},
		{"  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGame_Key(t *testing.T) {
	tests := []struct {
		name string
		game *Game
		want string
	}{
		{"steam with app id", &Game{Name: "Half-Life 2", Source: SourceSteam, AppID: "220"}, "steam_220"},
		{"steam without app id", &Game{Name: "Half-Life 2", Source: SourceSteam}, "game_Half-Life 2"},
		{"epic ignores app id", &Game{Name: "Alan Wake", Source: "Epic", AppID: "abc"}, "game_Alan Wake"},
		{"edition stripped", &Game{Name: "Skyrim: Special Edition"}, "game_Skyrim"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.game.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGame_HasArtwork(t *testing.T) {
	if (&Game{Name: "x"}).HasArtwork() {
		t.Error("HasArtwork() should be false without URLs")
	}
	if (&Game{Name: "x", HeroURLs: []string{""}}).HasArtwork() {
		t.Error("HasArtwork() should ignore empty hero URLs")
	}
	if !(&Game{Name: "x", PosterURL: "http://x/p.png"}).HasArtwork() {
		t.Error("HasArtwork() should be true with a poster URL")
	}
	if !(&Game{Name: "x", HeroURLs: []string{"http://x/h.png"}}).HasArtwork() {
		t.Error("HasArtwork() should be true with a hero URL")
	}
}

func TestGame_SetPosterPath(t *testing.T) {
	g := &Game{Name: "Foo"}
	g.SetPosterPath("/cache/a.png")
	g.SetPosterPath("/cache/b.png")

	if got := g.PosterPath(); got != "/cache/b.png" {
		t.Errorf("PosterPath() = %q, want last write", got)
	}
	if got := g.CoverArtPath(); got != "/cache/b.png" {
		t.Errorf("CoverArtPath() = %q, want it to mirror the poster", got)
	}
}

func TestGame_AddHeroPath_Idempotent(t *testing.T) {
	g := &Game{Name: "Foo"}

	if !g.AddHeroPath("/cache/a.png") {
		t.Fatal("first AddHeroPath should add")
	}
	if g.AddHeroPath("/cache/a.png") {
		t.Error("second AddHeroPath with the same path should not add")
	}
	g.AddHeroPath("/cache/b.png")

	got := g.HeroPaths()
	if len(got) != 2 {
		t.Fatalf("HeroPaths() = %v, want 2 entries", got)
	}
}

func TestGame_AddHeroPath_Concurrent(t *testing.T) {
	g := &Game{Name: "Foo"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every path is added by two goroutines.
			g.AddHeroPath(fmt.Sprintf("/cache/%d.png", i%25))
		}(i)
	}
	wg.Wait()

	if got := len(g.HeroPaths()); got != 25 {
		t.Errorf("len(HeroPaths()) = %d, want 25", got)
	}
}

func TestGame_HeroPathsIsCopy(t *testing.T) {
	g := &Game{Name: "Foo"}
	g.AddHeroPath("/cache/a.png")

	paths := g.HeroPaths()
	paths[0] = "mutated"

	if g.HeroPaths()[0] != "/cache/a.png" {
		t.Error("HeroPaths() must return a copy")
	}
}

func TestGame_RestoreLocalPaths(t *testing.T) {
	g := &Game{Name: "Foo"}
	g.AddHeroPath("/cache/a.png")
	g.RestoreLocalPaths("/cache/p.png", "", []string{"/cache/a.png", "", "/cache/b.png"})

	if g.PosterPath() != "/cache/p.png" {
		t.Errorf("PosterPath() = %q", g.PosterPath())
	}
	if g.CoverArtPath() != "" {
		t.Errorf("CoverArtPath() = %q, want empty", g.CoverArtPath())
	}
	if got := g.HeroPaths(); len(got) != 2 {
		t.Errorf("HeroPaths() = %v, want 2 distinct entries", got)
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		role  Role
		multi bool
		valid bool
	}{
		{RolePoster, false, true},
		{RoleHero, true, true},
		{Role("banner"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			if got := tt.role.Multi(); got != tt.multi {
				t.Errorf("Multi() = %v, want %v", got, tt.multi)
			}
			if got := tt.role.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}
