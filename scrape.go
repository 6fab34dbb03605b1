package ytextract

import (
	"context"
	"fmt"
	"net/http"
	"time"

	youtube "github.com/kkdai/youtube/v2"
)

// scrapeFetcher retrieves metadata without a credential through the embedded
// player response, the way youtube downloader clients do. It covers all the
// fields the Data API fetcher fills.
func scrapeFetcher(ctx context.Context, client *http.Client, videoID, _ string) (*VideoMetadata, error) {
	c := youtube.Client{HTTPClient: client}
	video, err := c.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("player response: %w", err)
	}
	md := &VideoMetadata{
		VideoID:     videoID,
		VideoURL:    watchURL(videoID),
		Title:       video.Title,
		ChannelName: video.Author,
		Description: video.Description,
		ViewCount:   uint64(video.Views),
		Duration:    int64(video.Duration / time.Second),
	}
	if !video.PublishDate.IsZero() {
		md.PublishDate = video.PublishDate.Format(time.RFC3339)
	}
	md.fillDefaults()
	return md, nil
}
