package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/veesix-networks/vlanhal/pkg/confdb"
	"github.com/veesix-networks/vlanhal/pkg/events"
	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/version"
)

// Client talks to the vlanhald northbound API.
type Client struct {
	base string
	http *http.Client
}

func NewClient(addr string) *Client {
	return &Client{
		base: "http://" + addr,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return &apiError{Status: resp.StatusCode, Message: apiErr.Error}
		}
		return &apiError{Status: resp.StatusCode, Message: resp.Status}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Ping checks the daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *Client) ListGroups(ctx context.Context) ([]hal.GroupState, error) {
	var out []hal.GroupState
	err := c.do(ctx, http.MethodGet, "/api/groups", nil, &out)
	return out, err
}

func (c *Client) GetGroup(ctx context.Context, name string) (*hal.GroupState, error) {
	var out hal.GroupState
	if err := c.do(ctx, http.MethodGet, "/api/groups/"+url.PathEscape(name), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddGroup(ctx context.Context, name, vlanID string) error {
	body := map[string]string{"name": name, "vlan_id": vlanID}
	return c.do(ctx, http.MethodPost, "/api/groups", body, nil)
}

func (c *Client) DeleteGroup(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/api/groups/"+url.PathEscape(name), nil, nil)
}

func (c *Client) AddInterface(ctx context.Context, group, ifName, vlanID string) error {
	body := map[string]string{"name": ifName, "vlan_id": vlanID}
	return c.do(ctx, http.MethodPost, "/api/groups/"+url.PathEscape(group)+"/interfaces", body, nil)
}

func (c *Client) DeleteInterface(ctx context.Context, group, ifName, vlanID string) error {
	path := "/api/groups/" + url.PathEscape(group) + "/interfaces/" + url.PathEscape(ifName)
	if vlanID != "" {
		path += "?vlan_id=" + url.QueryEscape(vlanID)
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) FlushInterfaces(ctx context.Context, group string) error {
	return c.do(ctx, http.MethodDelete, "/api/groups/"+url.PathEscape(group)+"/interfaces", nil, nil)
}

func (c *Client) ConfigEntries(ctx context.Context) ([]confdb.Entry, error) {
	var out []confdb.Entry
	err := c.do(ctx, http.MethodGet, "/api/config-entries", nil, &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (*hal.Stats, error) {
	var out hal.Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Events(ctx context.Context) (*events.Stats, error) {
	var out events.Stats
	if err := c.do(ctx, http.MethodGet, "/api/events", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Version(ctx context.Context) (*version.Info, error) {
	var out version.Info
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
