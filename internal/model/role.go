package model

// Role is the slot an image fills on a Game.
type Role string

const (
	// RolePoster is the single grid poster. A new result replaces the old one.
	RolePoster Role = "poster"

	// RoleHero is a background image. A game collects any number of them.
	RoleHero Role = "hero"
)

// Multi returns true if the role collects several images per game.
func (r Role) Multi() bool {
	return r == RoleHero
}

// Valid returns true for the roles the pipeline knows how to apply.
func (r Role) Valid() bool {
	return r == RolePoster || r == RoleHero
}

func (r Role) String() string {
	return string(r)
}
