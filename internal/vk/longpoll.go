package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vkurushin/wordchain/internal/model"
)

// longPollServer is the session returned by groups.getLongPollServer.
type longPollServer struct {
	Key    string `json:"key"`
	Server string `json:"server"`
	TS     string `json:"ts"`
}

// getLongPollServer opens a long poll session for the bot's group.
func (c *Client) getLongPollServer(ctx context.Context) (*longPollServer, error) {
	params := url.Values{}
	params.Set("group_id", c.groupID)

	var srv longPollServer
	if err := c.callMethod(ctx, "groups.getLongPollServer", params, &srv); err != nil {
		return nil, err
	}
	return &srv, nil
}

// pollResponse is one a_check result. When Failed is non-zero the
// session must be adjusted and Updates is empty.
type pollResponse struct {
	TS      string `json:"ts"`
	Failed  int    `json:"failed"`
	Updates []struct {
		Type   string `json:"type"`
		Object struct {
			Message struct {
				PeerID int64  `json:"peer_id"`
				FromID int64  `json:"from_id"`
				Text   string `json:"text"`
			} `json:"message"`
		} `json:"object"`
	} `json:"updates"`
}

// LongPoller streams message events from the VK group long poll server.
type LongPoller struct {
	client *Client
	wait   int
}

// NewLongPoller creates a poller over an established API client.
func NewLongPoller(client *Client) *LongPoller {
	return &LongPoller{client: client, wait: 25}
}

// Run polls for updates until ctx is cancelled, passing each new chat
// message to handle. Expired sessions are renewed transparently; a
// handle error is logged and the update dropped.
func (p *LongPoller) Run(ctx context.Context, handle func(context.Context, model.Update) error) error {
	srv, err := p.client.getLongPollServer(ctx)
	if err != nil {
		return fmt.Errorf("get long poll server: %w", err)
	}
	log.Info().Str("server", srv.Server).Msg("Long poll session opened")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		res, err := p.check(ctx, srv)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("Long poll check failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		switch res.Failed {
		case 0:
			srv.TS = res.TS
		case 1:
			// Event history is stale, resume from the ts VK returned.
			srv.TS = res.TS
			continue
		default:
			// Key expired (2) or state lost (3), open a fresh session.
			srv, err = p.client.getLongPollServer(ctx)
			if err != nil {
				return fmt.Errorf("renew long poll server: %w", err)
			}
			log.Info().Int("failed", res.Failed).Msg("Long poll session renewed")
			continue
		}

		for _, ev := range res.Updates {
			if ev.Type != "message_new" {
				continue
			}
			upd := model.Update{
				PeerID: ev.Object.Message.PeerID,
				UserID: ev.Object.Message.FromID,
				Body:   ev.Object.Message.Text,
			}
			if err := handle(ctx, upd); err != nil {
				log.Error().Err(err).Int64("peer_id", upd.PeerID).Msg("Failed to hand off update")
			}
		}
	}
}

// check performs one a_check request against the long poll server.
func (p *LongPoller) check(ctx context.Context, srv *longPollServer) (*pollResponse, error) {
	q := url.Values{}
	q.Set("act", "a_check")
	q.Set("key", srv.Key)
	q.Set("ts", srv.TS)
	q.Set("wait", strconv.Itoa(p.wait))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.Server+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build check request: %w", err)
	}

	resp, err := p.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("long poll check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("long poll status %d: %s", resp.StatusCode, body)
	}

	var res pollResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("long poll decode: %w", err)
	}
	return &res, nil
}
