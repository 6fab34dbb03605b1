// Package ytextract implements a service that extracts metadata and
// transcript text for YouTube videos.
//
// The main endpoint accepts POST requests with a JSON body carrying
// a `youtube_url` attribute and answers with the video metadata alongside
// the best transcript the service could acquire. Transcript acquisition
// walks an ordered fallback chain: a manually authored track in the
// preferred languages, an auto-generated one, any available language, and
// finally lyrics heuristically extracted from the video description.
// A missing transcript is an expected outcome, not a request failure; such
// responses still carry HTTP 200 with `transcript_available` set to false
// and a descriptive placeholder in `transcript`.
//
// Example:
//
//	POST /extract
//	{"youtube_url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}
//
// Will return:
//
//	Type: "application/json"
//
//	{
//		"metadata": {
//			"video_id": "dQw4w9WgXcQ",
//			"video_url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
//			"title": "Rick Astley - Never Gonna Give You Up (Video)",
//			"channel_name": "Rick Astley",
//			"description": "...",
//			"publish_date": "2009-10-25T06:57:33Z",
//			"view_count": 1700000000,
//			"duration_seconds": 213
//		},
//		"transcript": "We're no strangers to love ...",
//		"transcript_available": true,
//		"transcript_type": "manual"
//	}
//
// Metadata is sourced from the YouTube Data API v3 when the request carries
// an X-API-Key header, falling back to the keyless player response and the
// oembed endpoint otherwise. `/api/mindpal/extract` serves the same data in
// the MindPal envelope, locating the video URL inside free-form (optionally
// markdown) input.
package ytextract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/artyom/httpflags"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

type extractHandler struct {
	HTTPClient *http.Client
	Log        Logger

	fetchers   []MetadataFunc
	captions   CaptionSource
	langs      []string
	proxyURL   string
	requireKey bool

	router *mux.Router
}

// New returns a new initialized extract handler. If no configuration
// functions are provided, sane defaults are used: the Data API fetcher
// driven by the caller's X-API-Key header, backed by the keyless
// player-response and oembed fetchers, and the watch-page caption source.
func New(conf ...ConfFunc) http.Handler {
	h := &extractHandler{langs: DefaultLanguages}
	for _, f := range conf {
		h = f(h)
	}
	if h.HTTPClient == nil {
		h.HTTPClient = http.DefaultClient
	}
	if h.Log == nil {
		h.Log = log.New(io.Discard, "", 0)
	}
	if h.fetchers == nil {
		h.fetchers = []MetadataFunc{dataAPIFetcher, scrapeFetcher, oembedFetcher}
	}
	if h.captions == nil {
		cc, err := newCaptionClient(h.HTTPClient, h.proxyURL)
		if err != nil {
			panic(err)
		}
		h.captions = cc
	}
	r := mux.NewRouter()
	r.HandleFunc("/", h.handleIndex).Methods(http.MethodGet)
	for _, p := range []string{"/extract", "/api/extract", "/get_youtube_data"} {
		r.HandleFunc(p, h.handleExtract).
			Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	}
	for _, p := range []string{"/mindpal/extract", "/api/mindpal/extract"} {
		r.HandleFunc(p, h.handleMindPal).
			Methods(http.MethodPost, http.MethodOptions)
	}
	r.HandleFunc("/api/debug", h.handleDebug).Methods(http.MethodPost)
	h.router = r
	return h
}

func (h *extractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// extractRequest is the inbound body of the extract endpoints. Historical
// clients send the url under different names; the first non-empty one wins.
type extractRequest struct {
	YoutubeURL string `json:"youtube_url"`
	VideoURL   string `json:"video_url"`
	URL        string `json:"url"`
	UseProxy   bool   `json:"use_proxy"`
}

func (r *extractRequest) url() string {
	for _, s := range []string{r.YoutubeURL, r.VideoURL, r.URL} {
		if s != "" {
			return s
		}
	}
	return ""
}

type extractResponse struct {
	Metadata            *VideoMetadata `json:"metadata"`
	Transcript          string         `json:"transcript"`
	TranscriptAvailable bool           `json:"transcript_available"`
	TranscriptType      Strategy       `json:"transcript_type,omitempty"`
	TranscriptLanguage  string         `json:"transcript_language,omitempty"`
	TranscriptError     FailureReason  `json:"transcript_error,omitempty"`
	TranscriptHints     []string       `json:"transcript_hints,omitempty"`
}

func (h *extractHandler) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	apiKey := r.Header.Get("X-API-Key")
	if h.requireKey && apiKey == "" {
		h.writeError(w, http.StatusUnauthorized, "API key is required")
		return
	}
	var req extractRequest
	switch r.Method {
	case http.MethodGet:
		args := struct {
			URL      string `flag:"youtube_url"`
			UseProxy bool   `flag:"use_proxy"`
		}{}
		if err := httpflags.Parse(&args, r); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid query parameters")
			return
		}
		req.YoutubeURL, req.UseProxy = args.URL, args.UseProxy
	default:
		if !isJSONRequest(r) {
			h.writeError(w, http.StatusBadRequest, "Request must be in JSON format")
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid JSON format: "+err.Error())
			return
		}
	}
	if req.url() == "" {
		h.writeError(w, http.StatusBadRequest, "'youtube_url' is required")
		return
	}
	videoID, err := ExtractVideoID(req.url())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Could not extract valid YouTube video ID")
		return
	}
	h.Log.Printf("extract %s (proxy=%v)", videoID, req.UseProxy)
	out, err := h.extract(r.Context(), videoID, apiKey, req.UseProxy)
	if err != nil {
		h.writeExtractError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// extract fetches metadata and the transcript for videoID. The metadata
// fetch and caption strategies are independent outbound calls and run
// concurrently; the lyrics fallback needs the fetched description, so it
// runs after the join.
func (h *extractHandler) extract(ctx context.Context, videoID, apiKey string, useProxy bool) (*extractResponse, error) {
	engine := &transcriptEngine{source: h.captions, langs: h.langs, log: h.Log}
	var (
		md *VideoMetadata
		tr *TranscriptResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := h.fetchMetadata(gctx, videoID, apiKey)
		if err != nil {
			return err
		}
		md = m
		return nil
	})
	g.Go(func() error {
		tr = engine.fetch(gctx, TranscriptRequest{VideoID: videoID, UseProxy: useProxy})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	tr = engine.lyricsFallback(tr, md.Description)

	out := &extractResponse{
		Metadata:            md,
		Transcript:          tr.Text,
		TranscriptAvailable: tr.Available,
	}
	if tr.Available {
		out.TranscriptType = tr.Strategy
		out.TranscriptLanguage = tr.Language
	} else {
		out.TranscriptError = tr.Reason
		out.TranscriptHints = tr.Hints
	}
	return out, nil
}

// fetchMetadata walks the metadata source chain; first result wins.
// Credentialed sources skip their turn on requests without a key.
func (h *extractHandler) fetchMetadata(ctx context.Context, videoID, apiKey string) (*VideoMetadata, error) {
	var firstErr error
	for _, f := range h.fetchers {
		md, err := f(ctx, h.HTTPClient, videoID, apiKey)
		if err != nil {
			if errors.Is(err, errNoAPIKey) {
				continue
			}
			h.Log.Printf("metadata %s: %v", videoID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return md, nil
	}
	if firstErr == nil {
		firstErr = ErrVideoNotFound
	}
	return nil, firstErr
}

// mindpalRequest/mindpalResponse follow the MindPal custom-API envelope;
// the video url is located inside the free-form input text.
type mindpalRequest struct {
	Input    string `json:"input"`
	UseProxy bool   `json:"use_proxy"`
}

type mindpalResponse struct {
	Success bool         `json:"success"`
	Data    *mindpalData `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type mindpalData struct {
	extractResponse
	Source string `json:"source"`
}

func (h *extractHandler) handleMindPal(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	apiKey := r.Header.Get("X-API-Key")
	if h.requireKey && apiKey == "" {
		h.writeMindPalError(w, http.StatusUnauthorized, "API key is required")
		return
	}
	if !isJSONRequest(r) {
		h.writeMindPalError(w, http.StatusBadRequest, "Request must be in JSON format")
		return
	}
	var req mindpalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMindPalError(w, http.StatusBadRequest, "Invalid JSON format: "+err.Error())
		return
	}
	if req.Input == "" {
		h.writeMindPalError(w, http.StatusBadRequest, "Input field is required")
		return
	}
	videoID, err := FindVideoID(req.Input)
	if err != nil {
		h.writeMindPalError(w, http.StatusBadRequest, "Could not extract valid YouTube video ID")
		return
	}
	out, err := h.extract(r.Context(), videoID, apiKey, req.UseProxy)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			h.writeMindPalError(w, http.StatusBadRequest, "Video not found or not accessible")
			return
		}
		h.Log.Printf("mindpal extract: %v", err)
		h.writeMindPalError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, &mindpalResponse{
		Success: true,
		Data:    &mindpalData{extractResponse: *out, Source: watchURL(videoID)},
	})
}

func (h *extractHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "YouTube extract service is running",
		"endpoints": []map[string]string{
			{
				"path":        "/extract",
				"method":      "POST",
				"description": "Extract YouTube video metadata and transcript",
			},
			{
				"path":        "/api/mindpal/extract",
				"method":      "POST",
				"description": "MindPal-compatible API for YouTube extraction",
			},
		},
	})
}

const maxDebugBody = 64 * 1024

// handleDebug echoes request details back to the caller. Diagnostic only.
func (h *extractHandler) handleDebug(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(io.LimitReader(r.Body, maxDebugBody))
	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}
	args := make(map[string]string)
	for k := range r.URL.Query() {
		args[k] = r.URL.Query().Get(k)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"method":           r.Method,
		"url":              r.URL.String(),
		"remote_addr":      r.RemoteAddr,
		"content_type":     r.Header.Get("Content-Type"),
		"received_headers": headers,
		"received_args":    args,
		"received_body":    string(body),
	})
}

func (h *extractHandler) writeExtractError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrVideoNotFound) {
		h.writeError(w, http.StatusBadRequest, "Video not found or not accessible")
		return
	}
	h.Log.Printf("extract: %v", err)
	h.writeError(w, http.StatusInternalServerError, err.Error())
}

func (h *extractHandler) writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (h *extractHandler) writeMindPalError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, &mindpalResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func isJSONRequest(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
