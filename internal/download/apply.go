package download

import "github.com/handiism/artcache/internal/model"

// Apply records a fetched image path on its game. A poster replaces the
// previous poster and cover art; a hero image is appended unless the game
// already has it. It reports whether the game changed.
func Apply(game *model.Game, role model.Role, path string) bool {
	if game == nil || path == "" {
		return false
	}

	switch role {
	case model.RolePoster:
		game.SetPosterPath(path)
		return true
	case model.RoleHero:
		return game.AddHeroPath(path)
	default:
		return false
	}
}
