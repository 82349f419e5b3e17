package download

import (
	"github.com/handiism/artcache/internal/cache"
	"github.com/handiism/artcache/internal/model"
)

// Job is one image to fetch for one game.
type Job struct {
	Game *model.Game
	Role model.Role
	URL  string
	Key  string
}

// BuildJobs expands games into fetch jobs: one for the poster and one per
// hero image. Within a game, URLs that map to the same cache key for the same
// role produce a single job. Games without a name and URLs that are empty
// produce nothing.
func BuildJobs(games []*model.Game) []Job {
	var jobs []Job
	for _, game := range games {
		if game == nil {
			continue
		}

		seen := make(map[string]struct{})
		add := func(role model.Role, url string) {
			key, err := cache.Key(game.Name, role, url)
			if err != nil {
				return
			}
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			jobs = append(jobs, Job{Game: game, Role: role, URL: url, Key: key})
		}

		add(model.RolePoster, game.PosterURL)
		for _, url := range game.HeroURLs {
			add(model.RoleHero, url)
		}
	}
	return jobs
}
