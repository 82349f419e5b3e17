// Package fetch downloads artwork into the content-addressed cache.
//
// A Fetcher turns (URL, owner, role) into a local file path. The cache key is
// derived from those three values, so a request whose file is already on disk
// never touches the network, and concurrent requests for the same key share
// one transfer through a Registry.
//
// # Basic Usage
//
//	store, err := cache.Open(dir)
//	if err != nil {
//	    return err
//	}
//	f := fetch.New(http.NewClient(http.DefaultOptions()), store)
//
//	res, err := f.FetchOrGetCached(ctx, url, "Portal 2", model.RoleHero)
//	switch {
//	case err == nil:
//	    game.AddHeroPath(res.Path)
//	case fetch.IsExpectedMiss(err):
//	    // no image for this game
//	}
//
// # Errors
//
// ErrInvalidInput, ErrNotFound and ErrEmptyContent mean there is no image to
// cache. *NetworkError and *StorageError mean the transfer broke. Nothing is
// retried: a later request for the same key starts a fresh transfer.
package fetch
