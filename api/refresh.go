package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
)

// refreshState implements the refresh-and-retry concurrency protocol: any
// number of requests may hit a 401 at once, but at most one refresh call is in
// flight. Followers register a waiter and block until the leader's outcome is
// fanned out; every waiter is released in registration order with the same
// result, so no request is dropped or left hanging.
type refreshState struct {
	mu       sync.Mutex
	inFlight bool
	waiters  []chan bool
}

// awaitRefresh resolves one expiry event. It returns whether the session was
// refreshed and whether this caller was the leader (the one that performed the
// refresh call). Only the leader tears the session down on failure; followers
// fail uniformly without a second teardown.
func (c *Client) awaitRefresh(ctx context.Context) (ok, leader bool) {
	c.refresh.mu.Lock()
	if c.refresh.inFlight {
		ch := make(chan bool, 1)
		c.refresh.waiters = append(c.refresh.waiters, ch)
		c.refresh.mu.Unlock()

		select {
		case refreshed := <-ch:
			return refreshed, false
		case <-ctx.Done():
			return false, false
		}
	}
	c.refresh.inFlight = true
	c.refresh.mu.Unlock()

	refreshed := c.refreshSession(ctx)

	c.refresh.mu.Lock()
	c.refresh.inFlight = false
	waiters := c.refresh.waiters
	c.refresh.waiters = nil
	c.refresh.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshed
	}
	return refreshed, true
}

// refreshSession posts the stored refresh token to the refresh endpoint and
// rotates stored tokens on success. Any failure (missing token, transport
// error, non-OK status, malformed body) yields false without panicking.
func (c *Client) refreshSession(ctx context.Context) bool {
	refresh := c.store.RefreshToken()
	if refresh == "" {
		return false
	}

	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshEndpoint, bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("token refresh failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Msg("token refresh rejected")
		return false
	}

	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil || tokens.Access == "" {
		c.log.Warn().Msg("token refresh returned no access token")
		return false
	}

	if err := c.store.SetAccessToken(tokens.Access); err != nil {
		c.log.Error().Err(err).Msg("access token store failed")
		return false
	}
	if tokens.Refresh != "" {
		if err := c.store.SetRefreshToken(tokens.Refresh); err != nil {
			c.log.Error().Err(err).Msg("refresh token rotation failed")
		}
	}
	return true
}
