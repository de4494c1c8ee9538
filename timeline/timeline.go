// Package timeline fetches and decodes pages of the authenticated user's
// reverse-chronological home timeline. It obtains its bearer token and
// user ID from the session layer, so token refresh stays transparent to
// callers scrolling the feed.
package timeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/joeshaw/envdecode"

	"github.com/xcloneapp/xclient-go/internal/flight"
	"github.com/xcloneapp/xclient-go/session"
)

const (
	defaultBaseURL    = "https://api.x.com/2"
	defaultMaxResults = 25

	timelinePathFormat = "/users/%s/timelines/reverse_chronological"

	expansionsParam  = "author_id,attachments.media_keys"
	tweetFieldsParam = "author_id,attachments,created_at"
	userFieldsParam  = "confirmed_email,profile_image_url"
	mediaFieldsParam = "height,width,url,preview_image_url"
)

// SessionContextProvider supplies the bearer token and user for timeline
// requests. Satisfied by *session.Manager.
type SessionContextProvider interface {
	GetSessionContext(ctx context.Context) (*session.SessionContext, error)
}

// Config controls a timeline Client.
type Config struct {
	// BaseURL is the API root. ENV: X_API_BASE_URL
	BaseURL string `env:"X_API_BASE_URL,default=https://api.x.com/2"`

	// MaxResults is the page size requested per fetch. ENV: X_TIMELINE_PAGE_SIZE
	MaxResults int `env:"X_TIMELINE_PAGE_SIZE,default=25"`

	Session    SessionContextProvider
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Normalize applies defaults.
func (c *Config) Normalize() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.MaxResults <= 0 {
		c.MaxResults = defaultMaxResults
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate reports configuration errors after normalization.
func (c *Config) Validate() error {
	if c.Session == nil {
		return fmt.Errorf("timeline: session context provider required")
	}
	return nil
}

// NewConfigFromEnv builds a Config from process env vars. The session
// provider still has to be supplied by the caller before use.
func NewConfigFromEnv() (Config, error) {
	var c Config
	if err := envdecode.StrictDecode(&c); err != nil {
		return Config{}, fmt.Errorf("timeline: decoding config from env: %w", err)
	}
	c.Normalize()
	return c, nil
}

// Client fetches timeline pages. Safe for concurrent use; concurrent
// fetches of the same page coalesce onto one request.
type Client struct {
	cfg     Config
	fetches flight.Group[*TweetPage]
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg}, nil
}

// Fetch retrieves one page of the home timeline. An empty paginationToken
// fetches the newest page; otherwise the token from a previous page's
// NextPageToken or PreviousPageToken selects the page.
func (c *Client) Fetch(ctx context.Context, paginationToken string) (*TweetPage, error) {
	return c.fetches.Do("fetch:"+paginationToken, func() (*TweetPage, error) {
		sc, err := c.cfg.Session.GetSessionContext(ctx)
		if err != nil {
			return nil, &AuthenticationError{Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildTimelineURL(sc.User.ID, paginationToken), nil)
		if err != nil {
			return nil, &HTTPError{Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+sc.AccessToken)

		resp, err := c.cfg.HTTPClient.Do(req)
		if err != nil {
			return nil, &HTTPError{Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, &HTTPError{StatusCode: resp.StatusCode}
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &HTTPError{Err: err}
		}
		if len(body) == 0 {
			return nil, ErrEmptyResponse
		}

		page, err := decodePage(body)
		if err != nil {
			return nil, err
		}
		c.cfg.Logger.DebugContext(ctx, "timeline page fetched",
			"result_count", page.ItemCount,
			"has_next", page.NextPageToken != "",
			"has_previous", page.PreviousPageToken != "")
		return page, nil
	})
}

func (c *Client) buildTimelineURL(userID, paginationToken string) string {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(c.cfg.MaxResults))
	if paginationToken != "" {
		q.Set("pagination_token", paginationToken)
	}
	q.Set("expansions", expansionsParam)
	q.Set("tweet.fields", tweetFieldsParam)
	q.Set("user.fields", userFieldsParam)
	q.Set("media.fields", mediaFieldsParam)
	return c.cfg.BaseURL + fmt.Sprintf(timelinePathFormat, userID) + "?" + q.Encode()
}
