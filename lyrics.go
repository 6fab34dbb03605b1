package ytextract

import (
	"regexp"
	"strings"
)

// Long descriptions that mention "lyrics" tend to be music videos embedding
// the full lyrics as text; the length floor keeps short teasers out.
const minLyricsDescription = 500

// lyricsFromDescription guards the extraction heuristic: it only fires for
// descriptions that plausibly embed lyrics.
func lyricsFromDescription(desc string) string {
	if len(desc) <= minLyricsDescription || !strings.Contains(strings.ToLower(desc), "lyrics") {
		return ""
	}
	return extractLyrics(desc)
}

// extractLyrics pulls lyrics text out of a video description. Three passes,
// weakest last: an explicit "Lyrics:" block, then song section markers, then
// a density scan for runs of consecutive short lines. Pure function of its
// input; returns "" when nothing qualified.
func extractLyrics(desc string) string {
	lines := strings.Split(strings.ReplaceAll(desc, "\r\n", "\n"), "\n")
	for _, pass := range []func([]string) []string{
		lyricsMarkerBlock,
		lyricsSectionBlocks,
		lyricsDenseRuns,
	} {
		if got := pass(lines); len(got) > 0 {
			return strings.Join(got, "\n")
		}
	}
	return ""
}

// lyricsMarkerBlock collects the non-blank lines between an explicit lyrics
// marker and the first line that looks like promo material (url, hashtag,
// subscribe/follow plea).
func lyricsMarkerBlock(lines []string) []string {
	start := -1
	for i, line := range lines {
		t := strings.ToLower(strings.TrimSpace(line))
		if t == "lyrics:" || t == "lyrics" || strings.Contains(t, "lyrics:") {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	var out []string
	for _, line := range lines[start+1:] {
		t := strings.TrimSpace(line)
		lt := strings.ToLower(t)
		if strings.HasPrefix(t, "http") || strings.HasPrefix(t, "#") ||
			strings.Contains(lt, "subscribe") || strings.Contains(lt, "follow") {
			break
		}
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// reSectionMarker matches song structure markers such as "Verse 2:",
// "[Chorus]" or "(bridge)".
var reSectionMarker = regexp.MustCompile(`(?i)^[\[(]?(verse|chorus|bridge|hook|outro|intro)(\s*\d+)?\s*:?[\])]?$`)

// lyricsSectionBlocks collects up to 20 non-blank, non-url lines after each
// song section marker.
func lyricsSectionBlocks(lines []string) []string {
	var out []string
	budget := 0
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if reSectionMarker.MatchString(t) {
			budget = 20
			continue
		}
		if budget == 0 || t == "" || strings.HasPrefix(t, "http") {
			continue
		}
		out = append(out, t)
		budget--
	}
	return out
}

// lyricsDenseRuns keeps runs of at least 4 consecutive short lines, the
// visual shape of a lyrics sheet. A url, hashtag, blank or overlong line
// breaks the run.
func lyricsDenseRuns(lines []string) []string {
	const (
		maxLineLen = 100
		minRun     = 4
	)
	var out, run []string
	commit := func() {
		if len(run) >= minRun {
			out = append(out, run...)
		}
		run = run[:0]
	}
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" || len(t) >= maxLineLen || strings.HasPrefix(t, "http") || strings.Contains(t, "#") {
			commit()
			continue
		}
		run = append(run, t)
	}
	commit()
	return out
}
