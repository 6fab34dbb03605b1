package ytextract

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html/charset"
)

// Sentinel errors reported by caption sources.
var (
	// ErrTranscriptsDisabled means the owner turned captions off for the
	// video.
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	// ErrNoTranscript means the video exists but no caption track does.
	ErrNoTranscript = errors.New("no transcript found for this video")
)

// CaptionTrack describes one available transcript of a video.
type CaptionTrack struct {
	URL       string
	Language  string // BCP-47 tag as reported by the player
	Generated bool   // true for machine-transcribed (asr) tracks
}

// CaptionList holds the caption tracks advertised for a video, in the order
// the player reports them.
type CaptionList struct {
	Tracks []CaptionTrack
}

// Find returns the first track in any of langs with the wanted generated
// flag, or nil. Language order expresses preference.
func (l *CaptionList) Find(langs []string, generated bool) *CaptionTrack {
	for _, lang := range langs {
		for i := range l.Tracks {
			t := &l.Tracks[i]
			if t.Generated == generated && t.Language == lang {
				return t
			}
		}
	}
	return nil
}

// First returns the first available track regardless of language, or nil.
func (l *CaptionList) First() *CaptionTrack {
	if len(l.Tracks) == 0 {
		return nil
	}
	return &l.Tracks[0]
}

// CaptionSource enumerates and fetches transcripts for a video. It is the
// seam the fallback engine depends on; tests substitute their own.
type CaptionSource interface {
	List(ctx context.Context, videoID string, useProxy bool) (*CaptionList, error)
	Fetch(ctx context.Context, track *CaptionTrack, useProxy bool) (string, error)
}

const maxCaptionBody = 2 << 20 // 2MB covers any watch page or timedtext file

// captionClient loads caption data from the public watch page: the page
// embeds a JSON blob listing the timedtext tracks available for the video.
// When constructed with a proxy url it keeps a second, proxied http client
// and picks it for requests that ask for one.
type captionClient struct {
	client  *http.Client
	proxied *http.Client // nil disables per-request proxying
}

func newCaptionClient(client *http.Client, proxyURL string) (*captionClient, error) {
	c := &captionClient{client: client}
	if c.client == nil {
		c.client = http.DefaultClient
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("proxy url: %w", err)
		}
		c.proxied = &http.Client{
			Timeout:   c.client.Timeout,
			Transport: &http.Transport{Proxy: http.ProxyURL(u)},
		}
	}
	return c, nil
}

func (c *captionClient) pick(useProxy bool) *http.Client {
	if useProxy && c.proxied != nil {
		return c.proxied
	}
	return c.client
}

func (c *captionClient) get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.New("youtube returned 429: requests from this IP are being blocked")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.New("bad status: " + resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxCaptionBody))
}

func (c *captionClient) List(ctx context.Context, videoID string, useProxy bool) (*CaptionList, error) {
	page, err := c.get(ctx, c.pick(useProxy), watchURL(videoID))
	if err != nil {
		return nil, err
	}
	if bytes.Contains(page, []byte(`class="g-recaptcha"`)) {
		return nil, errors.New("watch page is captcha-walled, this IP looks blocked")
	}
	const needle = `"captions":`
	i := bytes.Index(page, []byte(needle))
	if i < 0 {
		if !bytes.Contains(page, []byte(`playabilityStatus`)) {
			return nil, fmt.Errorf("video %q not found", videoID)
		}
		// playable video, no captions section at all
		return nil, ErrTranscriptsDisabled
	}

	var data struct {
		R *struct {
			Tracks []struct {
				BaseURL  string `json:"baseUrl"`
				Language string `json:"languageCode"`
				Kind     string `json:"kind"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	}
	// json.Decoder stops at the end of the blob and ignores the rest of the
	// page following it
	dec := json.NewDecoder(bytes.NewReader(page[i+len(needle):]))
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("caption blob: %w", err)
	}
	if data.R == nil || len(data.R.Tracks) == 0 {
		return nil, ErrNoTranscript
	}
	list := &CaptionList{Tracks: make([]CaptionTrack, 0, len(data.R.Tracks))}
	for _, t := range data.R.Tracks {
		list.Tracks = append(list.Tracks, CaptionTrack{
			URL:       t.BaseURL,
			Language:  t.Language,
			Generated: t.Kind == "asr",
		})
	}
	return list, nil
}

func (c *captionClient) Fetch(ctx context.Context, track *CaptionTrack, useProxy bool) (string, error) {
	body, err := c.get(ctx, c.pick(useProxy), track.URL)
	if err != nil {
		return "", err
	}
	return decodeTimedText(body)
}

// decodeTimedText parses the legacy timedtext XML
// (<transcript><text start="..." dur="...">...</text></transcript>) and
// joins the text runs with single spaces.
func decodeTimedText(data []byte) (string, error) {
	var doc struct {
		XMLName xml.Name `xml:"transcript"`
		Texts   []struct {
			Text string `xml:",chardata"`
		} `xml:"text"`
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&doc); err != nil {
		return "", fmt.Errorf("decoding timedtext: %w", err)
	}
	parts := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		if s := strings.TrimSpace(html.UnescapeString(t.Text)); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoTranscript
	}
	return strings.Join(parts, " "), nil
}
