// Package cache implements the content-addressed artwork cache.
//
// A cached image lives in one flat directory under a file name derived from
// its owner, role and source URL:
//
//	{sanitizedOwnerName}_{role}_{8-hex-fingerprint}.{ext}
//
// There is no index file. If the file exists, the image is cached.
//
// # Keys
//
//	key, err := cache.Key("Portal 2", model.RoleHero, heroURL)
//	if errors.Is(err, cache.ErrInvalidInput) {
//	    // missing owner or URL: nothing to fetch
//	}
//
// # Store
//
//	store, _ := cache.Open(dir)
//	exists, _ := store.Exists(ctx, key)
//	_ = store.Write(ctx, key, data, contentType)
//	path := store.Path(key)
package cache
