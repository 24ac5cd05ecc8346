package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultHubURL      = "https://pubsubhubbub.appspot.com/subscribe"
	DefaultLease       = 432000 * time.Second
	DefaultVerifyToken = "cricket_videos"

	topicURL = "https://www.youtube.com/xml/feeds/videos.xml?channel_id="
)

// Subscriber registers WebSub subscriptions for channel upload feeds.
type Subscriber struct {
	httpClient  *http.Client
	hubURL      string
	verifyToken string
	lease       time.Duration
	logger      *zap.Logger
}

func NewSubscriber(hubURL, verifyToken string, lease time.Duration, logger *zap.Logger) *Subscriber {
	if hubURL == "" {
		hubURL = DefaultHubURL
	}
	if verifyToken == "" {
		verifyToken = DefaultVerifyToken
	}
	if lease <= 0 {
		lease = DefaultLease
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		hubURL:      hubURL,
		verifyToken: verifyToken,
		lease:       lease,
		logger:      logger,
	}
}

// VerifyToken is the token the hub echoes back on verification.
func (s *Subscriber) VerifyToken() string {
	return s.verifyToken
}

// TopicURL is the upload feed of a channel.
func TopicURL(channelID string) string {
	return topicURL + url.QueryEscape(channelID)
}

// Subscribe asks the hub to deliver upload notifications for the channel to
// callback. An existing subscription (409) counts as success.
func (s *Subscriber) Subscribe(ctx context.Context, channelID, callback string) error {
	form := url.Values{}
	form.Set("hub.callback", callback)
	form.Set("hub.topic", TopicURL(channelID))
	form.Set("hub.verify", "async")
	form.Set("hub.mode", "subscribe")
	form.Set("hub.verify_token", s.verifyToken)
	form.Set("hub.lease_seconds", fmt.Sprint(int(s.lease.Seconds())))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.hubURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", channelID, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusNoContent:
		s.logger.Info("subscribed to channel", zap.String("channel_id", channelID))
		return nil
	case http.StatusConflict:
		s.logger.Info("subscription already exists", zap.String("channel_id", channelID))
		return nil
	default:
		return fmt.Errorf("hub rejected subscription for %s: %d %s", channelID, resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

// Notification is one upload announced by the hub.
type Notification struct {
	VideoID   string
	ChannelID string
	Title     string
}

var ErrNoEntry = errors.New("notification has no entry")

type atomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Entries []atomEntry `xml:"http://www.w3.org/2005/Atom entry"`
}

type atomEntry struct {
	VideoID   string `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	ChannelID string `xml:"http://www.youtube.com/xml/schemas/2015 channelId"`
	Title     string `xml:"http://www.w3.org/2005/Atom title"`
}

// ParseNotification reads the first entry of an Atom push notification.
func ParseNotification(r io.Reader) (Notification, error) {
	var feed atomFeed
	if err := xml.NewDecoder(r).Decode(&feed); err != nil {
		return Notification{}, fmt.Errorf("decoding notification: %w", err)
	}
	if len(feed.Entries) == 0 {
		return Notification{}, ErrNoEntry
	}

	e := feed.Entries[0]
	n := Notification{
		VideoID:   strings.TrimSpace(e.VideoID),
		ChannelID: strings.TrimSpace(e.ChannelID),
		Title:     strings.TrimSpace(e.Title),
	}
	if n.VideoID == "" || n.ChannelID == "" {
		return Notification{}, fmt.Errorf("notification entry is missing video or channel id")
	}
	return n, nil
}
