package ytextract

import (
	"context"
	"errors"
	"strings"
)

// Strategy identifies how a transcript was (or was not) acquired.
type Strategy string

const (
	StrategyManual    Strategy = "manual"
	StrategyGenerated Strategy = "auto_generated"
	StrategyAny       Strategy = "other_language"
	StrategyLyrics    Strategy = "description_lyrics"
	StrategyNone      Strategy = "none"
)

// FailureReason classifies why no transcript could be produced.
type FailureReason string

const (
	FailureDisabled FailureReason = "transcripts_disabled"
	FailureNotFound FailureReason = "no_transcript_found"
	FailureBlocked  FailureReason = "rate_limited_or_blocked"
	FailureUnknown  FailureReason = "unknown"
)

// DefaultLanguages is the preferred transcript language set: human-authored
// English first, regional variants as written by uploaders.
var DefaultLanguages = []string{"en", "en-US", "en-GB"}

// TranscriptRequest carries everything one transcript acquisition needs.
// Description, when known up front, enables the lyrics fallback directly;
// the handler normally supplies it after the metadata fetch completes.
type TranscriptRequest struct {
	VideoID     string
	Description string
	UseProxy    bool
}

// TranscriptResult is produced exactly once per request. When Available is
// false, Text holds a human-readable placeholder, never the empty string.
type TranscriptResult struct {
	Available bool
	Text      string
	Strategy  Strategy
	Language  string        // set when an other-language track was used
	Reason    FailureReason // set when Available is false
	Err       string        // upstream message, unknown failures only
	Hints     []string      // remediation hints, blocked outcomes only
}

// blockedHints is surfaced with rate_limited_or_blocked results. Payload
// only, never control flow: the engine does not retry a blocking upstream.
var blockedHints = []string{
	"retry with use_proxy enabled",
	"retry with authenticated cookies",
	"fall back to lyrics from the video description",
}

// transcriptEngine walks the ordered acquisition strategies and classifies
// the final outcome. No strategy is ever attempted twice.
type transcriptEngine struct {
	source CaptionSource
	langs  []string
	log    Logger
}

// fetch tries, in order: a manually authored track in the preferred
// languages, an auto-generated one in the same set, any available track,
// and finally lyrics extracted from the description. The first success
// wins.
func (e *transcriptEngine) fetch(ctx context.Context, req TranscriptRequest) *TranscriptResult {
	list, err := e.source.List(ctx, req.VideoID, req.UseProxy)
	if err != nil {
		return e.fail(req, classifyCaptionError(err), err)
	}
	attempts := []struct {
		strategy Strategy
		track    *CaptionTrack
	}{
		{StrategyManual, list.Find(e.langs, false)},
		{StrategyGenerated, list.Find(e.langs, true)},
		{StrategyAny, list.First()},
	}
	var lastErr error
	tried := make(map[string]bool)
	for _, a := range attempts {
		if a.track == nil || tried[a.track.URL] {
			continue
		}
		tried[a.track.URL] = true
		text, err := e.source.Fetch(ctx, a.track, req.UseProxy)
		if err != nil {
			e.log.Printf("transcript %s: strategy %s failed: %v", req.VideoID, a.strategy, err)
			lastErr = err
			continue
		}
		res := &TranscriptResult{Available: true, Text: text, Strategy: a.strategy}
		if a.strategy == StrategyAny {
			res.Language = a.track.Language
		}
		return res
	}
	if lastErr != nil {
		return e.fail(req, classifyCaptionError(lastErr), lastErr)
	}
	return e.fail(req, FailureNotFound, ErrNoTranscript)
}

// fail builds the terminal result for reason, going through the lyrics
// fallback first when the outcome means no transcript exists.
func (e *transcriptEngine) fail(req TranscriptRequest, reason FailureReason, err error) *TranscriptResult {
	if noTranscriptExists(reason) {
		if text := lyricsFromDescription(req.Description); text != "" {
			return &TranscriptResult{Available: true, Text: text, Strategy: StrategyLyrics}
		}
	}
	res := &TranscriptResult{
		Strategy: StrategyNone,
		Reason:   reason,
		Text:     placeholderText(reason, err),
	}
	switch reason {
	case FailureUnknown:
		res.Err = err.Error()
	case FailureBlocked:
		res.Hints = blockedHints
	}
	return res
}

// lyricsFallback retries the description-lyrics strategy for results that
// ended in a no-transcript outcome once the description text is known.
func (e *transcriptEngine) lyricsFallback(res *TranscriptResult, description string) *TranscriptResult {
	if res.Available || !noTranscriptExists(res.Reason) {
		return res
	}
	if text := lyricsFromDescription(description); text != "" {
		return &TranscriptResult{Available: true, Text: text, Strategy: StrategyLyrics}
	}
	return res
}

// noTranscriptExists reports whether reason means the video has no
// transcript at all, as opposed to a transient or blocking failure.
func noTranscriptExists(reason FailureReason) bool {
	return reason == FailureDisabled || reason == FailureNotFound
}

// classifyCaptionError folds upstream failures into the reason taxonomy.
// Blocked detection string-matches the upstream message ("blocked"/"ip"): no
// structured code exists for it, so the heuristic lives in this one place
// until the upstream grows one.
func classifyCaptionError(err error) FailureReason {
	switch {
	case errors.Is(err, ErrTranscriptsDisabled):
		return FailureDisabled
	case errors.Is(err, ErrNoTranscript):
		return FailureNotFound
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "blocked") || strings.Contains(msg, "ip") {
		return FailureBlocked
	}
	return FailureUnknown
}

// placeholderText is what clients see in the transcript field when no
// transcript could be produced.
func placeholderText(reason FailureReason, err error) string {
	switch reason {
	case FailureDisabled:
		return "Transcript disabled by the video owner."
	case FailureNotFound:
		return "Transcript not found for this video."
	case FailureBlocked:
		return "Transcript temporarily unavailable: YouTube is blocking requests from this address."
	}
	return "Transcript not available. Error: " + err.Error()
}
