package ytextract

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// ErrInvalidURL is returned when no 11-character video identifier can be
// derived from the input.
var ErrInvalidURL = errors.New("could not extract valid YouTube video ID")

// reVideoURL matches the recognized YouTube URL shapes: watch?v=, embed/, v/
// and the short youtu.be form, with optional scheme and www./m. prefix. The
// identifier is exactly 11 url-safe base64 characters; the first character
// outside that set terminates the token.
var reVideoURL = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?(?:youtube\.com|youtube-nocookie\.com|youtu\.be)/(?:watch\?v=|embed/|v/)?([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-].*)?$`)

// ExtractVideoID derives the canonical video identifier from a YouTube URL.
// The identifier is an opaque case-sensitive token; no normalization is done.
func ExtractVideoID(rawurl string) (string, error) {
	m := reVideoURL.FindStringSubmatch(strings.TrimSpace(rawurl))
	if m == nil {
		return "", ErrInvalidURL
	}
	return m[1], nil
}

// reURLs matches sequence of characters described by RFC 3986 having http://
// or https:// prefix. It actually allows superset of characters from RFC
// 3986, which is good enough for picking url-like substrings out of chat
// text.
var reURLs = regexp.MustCompile(`https?://[%:/?#\[\]@!$&'\(\){}*+,;=\pL\pN._~-]+`)

// FindVideoID scans free-form text, as received in the MindPal "input"
// field, for the first substring that resolves to a video identifier. The
// text is tried verbatim first, then as markdown so that link destinations
// in agent messages are used as written, then as plain text.
func FindVideoID(input string) (string, error) {
	if id, err := ExtractVideoID(input); err == nil {
		return id, nil
	}
	for _, u := range markdownURLs(input) {
		if id, err := ExtractVideoID(u); err == nil {
			return id, nil
		}
	}
	for _, u := range reURLs.FindAllString(input, -1) {
		if id, err := ExtractVideoID(u); err == nil {
			return id, nil
		}
	}
	return "", ErrInvalidURL
}

// markdownURLs extracts link destinations from markdown text. Preformatted
// blocks are skipped, so urls inside code samples are not picked up.
func markdownURLs(content string) []string {
	doc := parser.New().Parse([]byte(content))
	var urls []string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Link:
			urls = append(urls, string(n.Destination))
		case *ast.CodeBlock, *ast.Code:
			return ast.SkipChildren
		}
		return ast.GoToNext
	})
	return urls
}
