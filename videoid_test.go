package ytextract

import "testing"

func TestExtractVideoID(t *testing.T) {
	const want = "dQw4w9WgXcQ"
	urls := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"http://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"www.youtube.com/watch?v=dQw4w9WgXcQ",
		"youtube.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"https://www.youtube.com/v/dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?si=abc",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ",
	}
	for _, u := range urls {
		got, err := ExtractVideoID(u)
		if err != nil {
			t.Errorf("ExtractVideoID(%q): %v", u, err)
			continue
		}
		if got != want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", u, got, want)
		}
	}
}

func TestExtractVideoIDInvalid(t *testing.T) {
	urls := []string{
		"",
		"not a url",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=short",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQtoolong",
		"https://youtu.be/dQw4w9WgXc!",
		"https://www.youtube.com/",
	}
	for _, u := range urls {
		if got, err := ExtractVideoID(u); err == nil {
			t.Errorf("ExtractVideoID(%q) = %q, want error", u, got)
		}
	}
}

func TestFindVideoID(t *testing.T) {
	const want = "dQw4w9WgXcQ"
	inputs := []string{
		"https://youtu.be/dQw4w9WgXcQ",
		"summarize this video: https://www.youtube.com/watch?v=dQw4w9WgXcQ thanks!",
		"check [this one](https://youtu.be/dQw4w9WgXcQ) out",
		"first https://example.com/nope then https://youtu.be/dQw4w9WgXcQ",
	}
	for _, in := range inputs {
		got, err := FindVideoID(in)
		if err != nil {
			t.Errorf("FindVideoID(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("FindVideoID(%q) = %q, want %q", in, got, want)
		}
	}
	if got, err := FindVideoID("no links in here"); err == nil {
		t.Errorf("FindVideoID on plain text = %q, want error", got)
	}
}
