package ytextract

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
)

// fakeCaptions is a scripted CaptionSource for engine tests.
type fakeCaptions struct {
	list     *CaptionList
	listErr  error
	texts    map[string]string // keyed by track URL
	fetchErr map[string]error
	fetched  []string
}

func (f *fakeCaptions) List(_ context.Context, _ string, _ bool) (*CaptionList, error) {
	return f.list, f.listErr
}

func (f *fakeCaptions) Fetch(_ context.Context, track *CaptionTrack, _ bool) (string, error) {
	f.fetched = append(f.fetched, track.URL)
	if err := f.fetchErr[track.URL]; err != nil {
		return "", err
	}
	return f.texts[track.URL], nil
}

func newTestEngine(src CaptionSource) *transcriptEngine {
	return &transcriptEngine{
		source: src,
		langs:  DefaultLanguages,
		log:    log.New(io.Discard, "", 0),
	}
}

func TestEngineManualPreferred(t *testing.T) {
	src := &fakeCaptions{
		list: &CaptionList{Tracks: []CaptionTrack{
			{URL: "t-asr", Language: "en", Generated: true},
			{URL: "t-manual", Language: "en"},
		}},
		texts: map[string]string{"t-manual": "hand written", "t-asr": "machine made"},
	}
	res := newTestEngine(src).fetch(context.Background(), TranscriptRequest{VideoID: "dQw4w9WgXcQ"})
	if !res.Available || res.Strategy != StrategyManual || res.Text != "hand written" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(src.fetched) != 1 {
		t.Errorf("fetched %d tracks, want 1 (no strategy after a success)", len(src.fetched))
	}
}

func TestEngineGeneratedFallback(t *testing.T) {
	src := &fakeCaptions{
		list: &CaptionList{Tracks: []CaptionTrack{
			{URL: "t-fr", Language: "fr"},
			{URL: "t-asr", Language: "en-US", Generated: true},
		}},
		texts: map[string]string{"t-asr": "machine made"},
	}
	res := newTestEngine(src).fetch(context.Background(), TranscriptRequest{VideoID: "dQw4w9WgXcQ"})
	if !res.Available || res.Strategy != StrategyGenerated || res.Text != "machine made" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestEngineAnyLanguageRecordsTag(t *testing.T) {
	src := &fakeCaptions{
		list:  &CaptionList{Tracks: []CaptionTrack{{URL: "t-de", Language: "de"}}},
		texts: map[string]string{"t-de": "auf deutsch"},
	}
	res := newTestEngine(src).fetch(context.Background(), TranscriptRequest{VideoID: "dQw4w9WgXcQ"})
	if !res.Available || res.Strategy != StrategyAny || res.Language != "de" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestEngineNoTrackFetchedTwice(t *testing.T) {
	// the only track is English manual; when its fetch fails, the
	// any-language strategy must not retry the very same track
	src := &fakeCaptions{
		list:     &CaptionList{Tracks: []CaptionTrack{{URL: "t-en", Language: "en"}}},
		fetchErr: map[string]error{"t-en": errors.New("timedtext gone")},
	}
	res := newTestEngine(src).fetch(context.Background(), TranscriptRequest{VideoID: "dQw4w9WgXcQ"})
	if res.Available {
		t.Fatalf("unexpected success: %+v", res)
	}
	if len(src.fetched) != 1 {
		t.Errorf("fetched %d times, want 1", len(src.fetched))
	}
}

func TestEngineDisabledPlaceholder(t *testing.T) {
	src := &fakeCaptions{listErr: ErrTranscriptsDisabled}
	res := newTestEngine(src).fetch(context.Background(), TranscriptRequest{VideoID: "dQw4w9WgXcQ"})
	if res.Available || res.Reason != FailureDisabled {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Text == "" {
		t.Error("failure result must carry a placeholder text")
	}
	if res.Strategy != StrategyNone {
		t.Errorf("strategy = %q, want %q", res.Strategy, StrategyNone)
	}
}

func TestEngineLyricsFallback(t *testing.T) {
	desc := "Lyrics:\nLine one\nLine two\n#hashtag\n" + strings.Repeat("filler ", 100)
	src := &fakeCaptions{listErr: ErrNoTranscript}
	res := newTestEngine(src).fetch(context.Background(), TranscriptRequest{
		VideoID:     "dQw4w9WgXcQ",
		Description: desc,
	})
	if !res.Available || res.Strategy != StrategyLyrics {
		t.Fatalf("unexpected result: %+v", res)
	}
	if want := "Line one\nLine two"; res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
}

func TestEngineLyricsNotTriedWhenBlocked(t *testing.T) {
	desc := "Lyrics:\nLine one\nLine two\n#hashtag\n" + strings.Repeat("filler ", 100)
	src := &fakeCaptions{listErr: errors.New("requests from this IP are being blocked")}
	engine := newTestEngine(src)
	res := engine.fetch(context.Background(), TranscriptRequest{
		VideoID:     "dQw4w9WgXcQ",
		Description: desc,
	})
	if res.Available {
		t.Fatalf("blocked outcome produced a transcript: %+v", res)
	}
	if res.Reason != FailureBlocked {
		t.Errorf("reason = %q, want %q", res.Reason, FailureBlocked)
	}
	if len(res.Hints) == 0 {
		t.Error("blocked result should carry remediation hints")
	}
	// the post-join fallback path must hold the same line
	if got := engine.lyricsFallback(res, desc); got.Available {
		t.Errorf("lyricsFallback overrode a blocked outcome: %+v", got)
	}
}

func TestEngineLyricsFallbackAfterJoin(t *testing.T) {
	desc := "Lyrics:\nLine one\nLine two\n#hashtag\n" + strings.Repeat("filler ", 100)
	src := &fakeCaptions{listErr: ErrTranscriptsDisabled}
	engine := newTestEngine(src)
	res := engine.fetch(context.Background(), TranscriptRequest{VideoID: "dQw4w9WgXcQ"})
	if res.Available {
		t.Fatalf("unexpected success before description is known: %+v", res)
	}
	res = engine.lyricsFallback(res, desc)
	if !res.Available || res.Strategy != StrategyLyrics {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestClassifyCaptionError(t *testing.T) {
	cases := []struct {
		err  error
		want FailureReason
	}{
		{ErrTranscriptsDisabled, FailureDisabled},
		{ErrNoTranscript, FailureNotFound},
		{errors.New("request Blocked by upstream"), FailureBlocked},
		{errors.New("your IP address is making too many requests"), FailureBlocked},
		{errors.New("watch page is captcha-walled, this IP looks blocked"), FailureBlocked},
		{errors.New("boom"), FailureUnknown},
	}
	for _, c := range cases {
		if got := classifyCaptionError(c.err); got != c.want {
			t.Errorf("classifyCaptionError(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestEngineUnknownWrapsMessage(t *testing.T) {
	src := &fakeCaptions{listErr: errors.New("boom")}
	res := newTestEngine(src).fetch(context.Background(), TranscriptRequest{VideoID: "dQw4w9WgXcQ"})
	if res.Reason != FailureUnknown {
		t.Fatalf("reason = %q, want %q", res.Reason, FailureUnknown)
	}
	if res.Err != "boom" {
		t.Errorf("err = %q, want %q", res.Err, "boom")
	}
	if !strings.Contains(res.Text, "boom") {
		t.Errorf("placeholder %q should carry the upstream message", res.Text)
	}
}
