package ytextract

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
)

// MetadataFunc defines a metadata source that can be attached to the extract
// handler. Sources are tried in order and the first one to return a result
// wins; apiKey is empty for requests that carried no credential, sources
// that need one return errNoAPIKey to pass the turn.
type MetadataFunc func(ctx context.Context, client *http.Client, videoID, apiKey string) (*VideoMetadata, error)

// ErrVideoNotFound reports that the upstream knows nothing about the video
// or refuses to serve it.
var ErrVideoNotFound = errors.New("video not found or not accessible")

// errNoAPIKey makes a credentialed source yield to the next one in the chain.
var errNoAPIKey = errors.New("no api key provided")

// VideoMetadata is the metadata object of the response envelope. Field names
// match what integrations already consume.
type VideoMetadata struct {
	VideoID     string `json:"video_id"`
	VideoURL    string `json:"video_url"`
	Title       string `json:"title"`
	ChannelName string `json:"channel_name"`
	Description string `json:"description"`
	PublishDate string `json:"publish_date"`
	ViewCount   uint64 `json:"view_count"`
	Duration    int64  `json:"duration_seconds"`
}

// fillDefaults replaces missing provider fields with the placeholder strings
// clients expect instead of empty values.
func (m *VideoMetadata) fillDefaults() {
	if m.VideoURL == "" {
		m.VideoURL = watchURL(m.VideoID)
	}
	if m.Title == "" {
		m.Title = "Title not available"
	}
	if m.ChannelName == "" {
		m.ChannelName = "Channel name not available"
	}
	if m.Description == "" {
		m.Description = "Description not available"
	}
	if m.PublishDate == "" {
		m.PublishDate = "Publish date not available"
	}
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

var reISODuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration converts ISO-8601 durations as reported by the Data API
// ("PT1H2M3S", "PT4M13S", "P1DT2H") to whole seconds.
func parseISODuration(s string) (int64, error) {
	m := reISODuration.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.New("unsupported duration format: " + s)
	}
	var secs int64
	for i, mult := range []int64{86400, 3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return 0, err
		}
		secs += n * mult
	}
	return secs, nil
}
