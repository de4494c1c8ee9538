package timeline

import "github.com/xcloneapp/xclient-go/pagebuf"

// Window is the memory-bounded view over the unbounded timeline stream: a
// fixed number of fetched pages held in scroll order, with flat tweet
// indexing across page boundaries. Appending or prepending past capacity
// evicts pages from the far end and returns them so the caller can
// reconcile any derived presentation state.
//
// Not safe for concurrent use; it belongs to whatever single consumer
// drives the feed.
type Window struct {
	pages *pagebuf.Deque[*TweetPage]
}

// NewWindow creates a Window holding at most capacity pages.
func NewWindow(capacity int) (*Window, error) {
	pages, err := pagebuf.New[*TweetPage](capacity)
	if err != nil {
		return nil, err
	}
	return &Window{pages: pages}, nil
}

// Append adds a page at the bottom of the window (older tweets), evicting
// from the top when full.
func (w *Window) Append(page *TweetPage) []*TweetPage {
	return w.pages.InsertBack(page)
}

// Prepend adds a page at the top of the window (newer tweets), evicting
// from the bottom when full.
func (w *Window) Prepend(page *TweetPage) []*TweetPage {
	return w.pages.InsertFront(page)
}

// Pages returns the number of pages currently held.
func (w *Window) Pages() int {
	return w.pages.Len()
}

// TweetCount returns the total number of tweets across all held pages.
func (w *Window) TweetCount() int {
	total := 0
	for i := 0; i < w.pages.Len(); i++ {
		p, _ := w.pages.At(i)
		total += len(p.Tweets)
	}
	return total
}

// TweetAt returns the tweet at the given flat index across the held
// pages, counting from the top of the window.
func (w *Window) TweetAt(index int) (Tweet, bool) {
	if index < 0 {
		return Tweet{}, false
	}
	lower := 0
	for i := 0; i < w.pages.Len(); i++ {
		p, _ := w.pages.At(i)
		upper := lower + len(p.Tweets)
		if index < upper {
			return p.Tweets[index-lower], true
		}
		lower = upper
	}
	return Tweet{}, false
}

// NextPageToken returns the token for the page below the window's bottom,
// or "" when the bottom page is the end of the stream.
func (w *Window) NextPageToken() string {
	if p, ok := w.pages.Back(); ok {
		return p.NextPageToken
	}
	return ""
}

// PreviousPageToken returns the token for the page above the window's top,
// or "" when already at the newest page.
func (w *Window) PreviousPageToken() string {
	if p, ok := w.pages.Front(); ok {
		return p.PreviousPageToken
	}
	return ""
}

// Clear drops all held pages without changing capacity.
func (w *Window) Clear() {
	w.pages.Clear()
}
