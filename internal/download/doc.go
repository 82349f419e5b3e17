// Package download orchestrates fetching artwork for a list of games.
//
// # Manager
//
// The Manager coordinates the whole run:
//
//  1. Expand games into poster and hero jobs (BuildJobs)
//  2. Run the jobs under a global concurrency bound (RunAll)
//  3. Fetch each image once through the shared cache (fetch.Fetcher)
//  4. Record local paths on the games (Apply)
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer manager.Close()
//
//	summary := manager.DownloadAll(ctx, games, func(p download.Progress) {
//	    fmt.Printf("%d/%d\n", p.Processed, p.Total)
//	})
//
// # Concurrency
//
// settings.MaxConcurrentDownloads bounds how many jobs run at once across
// all games. Identical images requested by several jobs are transferred once.
//
// # Failures
//
// A job that fails, panics or is cancelled before it starts is counted in
// the Summary and still reported as progress. DownloadAll never returns an
// error and never retries.
package download
