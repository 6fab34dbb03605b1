package ytextract

import "net/http"

// ConfFunc is used to configure new extract handler; such functions should
// be used as arguments to New function
type ConfFunc func(*extractHandler) *extractHandler

// WithHTTPClient configures extract handler to use provided http.Client for
// outgoing requests
func WithHTTPClient(client *http.Client) ConfFunc {
	return func(h *extractHandler) *extractHandler {
		if client != nil {
			h.HTTPClient = client
		}
		return h
	}
}

// WithLogger configures extract handler to use provided logger
func WithLogger(l Logger) ConfFunc {
	return func(h *extractHandler) *extractHandler {
		if l != nil {
			h.Log = l
		}
		return h
	}
}

// WithMetadataFetchers replaces the metadata source chain. Fetchers are
// tried in the order given; the first to return a result wins.
func WithMetadataFetchers(fetchers ...MetadataFunc) ConfFunc {
	return func(h *extractHandler) *extractHandler {
		if len(fetchers) > 0 {
			h.fetchers = fetchers
		}
		return h
	}
}

// WithCaptions sets the caption source used by the transcript fallback
// engine.
func WithCaptions(src CaptionSource) ConfFunc {
	return func(h *extractHandler) *extractHandler {
		if src != nil {
			h.captions = src
		}
		return h
	}
}

// WithLanguages sets the preferred transcript language set, most preferred
// first.
func WithLanguages(langs ...string) ConfFunc {
	return func(h *extractHandler) *extractHandler {
		if len(langs) > 0 {
			h.langs = langs
		}
		return h
	}
}

// WithProxy configures an outbound proxy for caption requests that ask for
// one via the use_proxy attribute. Requests without the attribute keep
// using the direct client.
func WithProxy(proxyURL string) ConfFunc {
	return func(h *extractHandler) *extractHandler {
		h.proxyURL = proxyURL
		return h
	}
}

// WithRequireAPIKey configures the handler to reject requests lacking an
// X-API-Key header, for deployments where the Data API is the only allowed
// metadata source.
func WithRequireAPIKey() ConfFunc {
	return func(h *extractHandler) *extractHandler {
		h.requireKey = true
		return h
	}
}

// Logger describes set of methods used by extract handler for logging;
// standard lib *log.Logger implements this interface.
type Logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
