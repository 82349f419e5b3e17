// Package model defines the core data structures shared by the artcache
// packages.
//
// # Game
//
// Game is an installed game as reported by discovery. Discovery fills in the
// remote artwork URLs; the download pipeline fills in the local paths:
//
//	game := &model.Game{Name: "Portal 2", PosterURL: posterURL, HeroURLs: heroURLs}
//	// ... pipeline runs ...
//	fmt.Println(game.PosterPath()) // cached poster
//	fmt.Println(game.HeroPaths())  // cached backgrounds
//
// Local paths are guarded by a per-game lock, so workers may record results
// for the same game concurrently.
//
// # Role
//
// Role names the slot an image fills:
//   - RolePoster: single-valued, last write wins
//   - RoleHero: multi-valued, appended once per distinct path
package model
