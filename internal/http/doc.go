// Package http provides the HTTP client used to download artwork from image
// providers.
//
// The Client wraps the standard library http.Client with:
//   - A User-Agent header identifying the launcher
//   - An optional static bearer credential
//   - Request timeouts
//   - A cap on response body size
//   - Typed errors for non-2xx responses
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{APIKey: key})
//
//	payload, err := client.Fetch(ctx, imageURL)
//	var statusErr *http.StatusError
//	switch {
//	case errors.Is(err, http.ErrNotFound):
//	    // 404/410: the provider dropped the image
//	case errors.As(err, &statusErr):
//	    // any other non-2xx status
//	}
//
// Note: This package shadows the standard library's net/http package name.
// Import it with an alias if you need both.
package http
