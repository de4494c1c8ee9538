package timeline

import (
	"encoding/json"

	"github.com/xcloneapp/xclient-go/identity"
)

// MediaType classifies a media attachment. Types the client does not
// render decode as MediaTypeUnknown rather than failing the page.
type MediaType string

const (
	MediaTypePhoto   MediaType = "photo"
	MediaTypeVideo   MediaType = "video"
	MediaTypeUnknown MediaType = "unknown"
)

// MediaAttachment is one media item attached to a tweet.
type MediaAttachment struct {
	Key             string
	Type            MediaType
	Width           int
	Height          int
	URL             string
	PreviewImageURL string
}

// Tweet carries everything needed to display one timeline entry. Author is
// nil when the response's included users did not cover the author ID;
// Attachments holds only the media keys the response actually included.
type Tweet struct {
	ID          string
	Text        string
	CreatedAt   string
	Author      *identity.UserProfile
	Attachments []MediaAttachment
}

// TweetPage is one page of the reverse-chronological timeline, with the
// pagination tokens needed to fetch its neighbors.
type TweetPage struct {
	NextPageToken     string
	PreviousPageToken string
	ItemCount         int
	Tweets            []Tweet
}

// Wire shapes for the timeline response envelope.
type timelineResponse struct {
	Data     []tweetData  `json:"data"`
	Includes includesData `json:"includes"`
	Meta     metaData     `json:"meta"`
}

type tweetData struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	AuthorID    string `json:"author_id"`
	CreatedAt   string `json:"created_at"`
	Attachments struct {
		MediaKeys []string `json:"media_keys"`
	} `json:"attachments"`
}

type mediaData struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	URL             string `json:"url"`
	PreviewImageURL string `json:"preview_image_url"`
}

type includesData struct {
	Users []identity.UserProfile `json:"users"`
	Media []mediaData            `json:"media"`
}

type metaData struct {
	PreviousToken string `json:"previous_token"`
	NextToken     string `json:"next_token"`
	ResultCount   int    `json:"result_count"`
}

// decodePage decodes a timeline response body into a TweetPage, resolving
// author and media references through lookup maps built once per response.
func decodePage(body []byte) (*TweetPage, error) {
	var resp timelineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}

	users := make(map[string]*identity.UserProfile, len(resp.Includes.Users))
	for i := range resp.Includes.Users {
		users[resp.Includes.Users[i].ID] = &resp.Includes.Users[i]
	}
	media := make(map[string]MediaAttachment, len(resp.Includes.Media))
	for _, m := range resp.Includes.Media {
		media[m.MediaKey] = MediaAttachment{
			Key:             m.MediaKey,
			Type:            mediaType(m.Type),
			Width:           m.Width,
			Height:          m.Height,
			URL:             m.URL,
			PreviewImageURL: m.PreviewImageURL,
		}
	}

	tweets := make([]Tweet, 0, len(resp.Data))
	for _, td := range resp.Data {
		var attachments []MediaAttachment
		for _, key := range td.Attachments.MediaKeys {
			if m, ok := media[key]; ok {
				attachments = append(attachments, m)
			}
		}
		tweets = append(tweets, Tweet{
			ID:          td.ID,
			Text:        td.Text,
			CreatedAt:   td.CreatedAt,
			Author:      users[td.AuthorID],
			Attachments: attachments,
		})
	}

	return &TweetPage{
		NextPageToken:     resp.Meta.NextToken,
		PreviousPageToken: resp.Meta.PreviousToken,
		ItemCount:         resp.Meta.ResultCount,
		Tweets:            tweets,
	}, nil
}

func mediaType(wire string) MediaType {
	switch wire {
	case "photo":
		return MediaTypePhoto
	case "video":
		return MediaTypeVideo
	default:
		return MediaTypeUnknown
	}
}
