package ytextract

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/artyom/oembed"
)

// oembedFetcher is a last-resort probe of the https://www.youtube.com/oembed
// endpoint. It only yields the title and channel name, but keeps working
// when both the Data API and the player response are unavailable.
func oembedFetcher(ctx context.Context, client *http.Client, videoID, _ string) (*VideoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	const endpointPrefix = `https://www.youtube.com/oembed?format=json&url=`
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointPrefix+url.QueryEscape(watchURL(videoID)), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	// the oembed endpoint answers 404/401 for missing or embed-restricted
	// videos
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrVideoNotFound
	}
	meta, err := oembed.FromResponse(resp)
	if err != nil {
		return nil, err
	}
	md := &VideoMetadata{
		VideoID:     videoID,
		VideoURL:    watchURL(videoID),
		Title:       meta.Title,
		ChannelName: meta.AuthorName,
	}
	md.fillDefaults()
	return md, nil
}
