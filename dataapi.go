package ytextract

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// dataAPIFetcher retrieves metadata from the official YouTube Data API v3.
// The caller's X-API-Key header supplies the credential; without one the
// fetcher defers to the next source in the chain.
func dataAPIFetcher(ctx context.Context, _ *http.Client, videoID, apiKey string) (*VideoMetadata, error) {
	if apiKey == "" {
		return nil, errNoAPIKey
	}
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	resp, err := svc.Videos.
		List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube api: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrVideoNotFound
	}
	item := resp.Items[0]
	md := &VideoMetadata{VideoID: videoID, VideoURL: watchURL(videoID)}
	if sn := item.Snippet; sn != nil {
		md.Title = sn.Title
		md.ChannelName = sn.ChannelTitle
		md.Description = sn.Description
		md.PublishDate = sn.PublishedAt
	}
	if cd := item.ContentDetails; cd != nil && cd.Duration != "" {
		if secs, err := parseISODuration(cd.Duration); err == nil {
			md.Duration = secs
		}
	}
	if st := item.Statistics; st != nil {
		md.ViewCount = st.ViewCount
	}
	md.fillDefaults()
	return md, nil
}
