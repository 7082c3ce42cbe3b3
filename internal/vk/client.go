// Package vk implements the VK Bot API gateway: sending messages into
// chat conversations and long-polling the group for new ones.
package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/vkurushin/wordchain/internal/metrics"
	"github.com/vkurushin/wordchain/internal/model"
)

const defaultBaseURL = "https://api.vk.com/method/"

// Client calls VK API methods on behalf of the group bot. Requests
// carry the group access token as a bearer header, which the VK API
// accepts from version 5.107 on.
type Client struct {
	httpClient *http.Client
	baseURL    string
	groupID    string
	version    string
}

// NewClient builds a VK API client for the given group token.
func NewClient(token, groupID, version string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)
	// The long poll check holds the connection up to wait seconds.
	httpClient.Timeout = 40 * time.Second

	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		groupID:    groupID,
		version:    version,
	}
}

// apiError is the error envelope VK returns in place of a response.
type apiError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("vk api error %d: %s", e.Code, e.Message)
}

// callMethod POSTs a VK API method and decodes its response envelope.
func (c *Client) callMethod(ctx context.Context, method string, params url.Values, out any) error {
	params.Set("v", c.version)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+method, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s status %d: %s", method, resp.StatusCode, body)
	}

	var envelope struct {
		Response json.RawMessage `json:"response"`
		Error    *apiError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%s decode: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%s: %w", method, envelope.Error)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Response, out); err != nil {
			return fmt.Errorf("%s decode response: %w", method, err)
		}
	}
	return nil
}

// SendMessage posts text into the conversation. The random_id
// deduplicates retries on the VK side.
func (c *Client) SendMessage(ctx context.Context, peerID int64, text string) error {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(peerID, 10))
	params.Set("message", text)
	params.Set("random_id", strconv.FormatInt(rand.Int63(), 10))

	if err := c.callMethod(ctx, "messages.send", params, nil); err != nil {
		metrics.SendFailures.Inc()
		return err
	}
	return nil
}

// GetConversationMembers resolves the conversation's member profiles.
func (c *Client) GetConversationMembers(ctx context.Context, peerID int64) ([]model.ChatMember, error) {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(peerID, 10))

	var res struct {
		Profiles []struct {
			ID        int64  `json:"id"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Online    int    `json:"online"`
		} `json:"profiles"`
	}
	if err := c.callMethod(ctx, "messages.getConversationMembers", params, &res); err != nil {
		return nil, err
	}

	members := make([]model.ChatMember, 0, len(res.Profiles))
	for _, p := range res.Profiles {
		members = append(members, model.ChatMember{
			UserID: p.ID,
			Name:   strings.TrimSpace(p.FirstName + " " + p.LastName),
			Online: p.Online == 1,
		})
	}
	return members, nil
}
