package northbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veesix-networks/vlanhal/pkg/component"
	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/logger"
	"github.com/veesix-networks/vlanhal/pkg/southbound/fake"
)

type staticReady bool

func (s staticReady) Ready() bool { return bool(s) }

func newTestServer(t *testing.T, ready Readiness) (*httptest.Server, *hal.HAL) {
	t.Helper()
	dp := fake.New()
	h, err := hal.New(hal.WithDataplane(dp))
	require.NoError(t, err)

	c := New(component.Dependencies{HAL: h}, "127.0.0.1:0", ready)
	srv := httptest.NewServer(c.routes())
	t.Cleanup(srv.Close)
	return srv, h
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestGroupLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/groups", `{"name":"brlan0","vlan_id":"100"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/groups/brlan0", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state hal.GroupState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	assert.True(t, state.Present)
	assert.Equal(t, "100", state.DefaultVLANID)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/groups/brlan0", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/groups/brlan0", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestStatusMapping(t *testing.T) {
	srv, h := newTestServer(t, nil)
	require.NoError(t, h.AddGroup(context.Background(), "brlan0", "100"))

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"conflict", http.MethodPost, "/api/groups", `{"name":"brlan0","vlan_id":"200"}`, http.StatusConflict},
		{"idempotent repeat", http.MethodPost, "/api/groups", `{"name":"brlan0","vlan_id":"100"}`, http.StatusCreated},
		{"bad vlan", http.MethodPost, "/api/groups", `{"name":"brlan1","vlan_id":"4095"}`, http.StatusBadRequest},
		{"bad name", http.MethodPost, "/api/groups", `{"name":"br lan","vlan_id":"100"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/groups", `{`, http.StatusBadRequest},
		{"iface group missing", http.MethodPost, "/api/groups/brlan9/interfaces", `{"name":"l2sd0"}`, http.StatusNotFound},
		{"flush group missing", http.MethodDelete, "/api/groups/brlan9/interfaces", "", http.StatusNotFound},
		{"iface add ok", http.MethodPost, "/api/groups/brlan0/interfaces", `{"name":"l2sd0"}`, http.StatusCreated},
		{"iface conflict", http.MethodPost, "/api/groups/brlan0/interfaces", `{"name":"l2sd0","vlan_id":"300"}`, http.StatusConflict},
		{"iface delete non-member ok", http.MethodDelete, "/api/groups/brlan0/interfaces/eth9", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestConfigEntriesEndpoint(t *testing.T) {
	srv, h := newTestServer(t, nil)
	require.NoError(t, h.InsertConfigEntry("brlan0", "100"))
	require.NoError(t, h.InsertConfigEntry("brebhaul", "1060"))

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/config-entries", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []struct {
		GroupName string `json:"group_name"`
		VLANID    string `json:"vlan_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	resp.Body.Close()

	require.Len(t, entries, 2)
	assert.Equal(t, "brebhaul", entries[0].GroupName)
	assert.Equal(t, "brlan0", entries[1].GroupName)
}

func TestHealthAndReadiness(t *testing.T) {
	srv, _ := newTestServer(t, staticReady(false))

	resp := doJSON(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()

	srvReady, _ := newTestServer(t, staticReady(true))
	resp = doJSON(t, http.MethodGet, srvReady.URL+"/readyz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestOpenAPIDocServes(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/openapi.json", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	resp.Body.Close()

	assert.Equal(t, "3.0.3", doc["openapi"])
	paths, ok := doc["paths"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, paths, "/api/groups")
	assert.Contains(t, paths, "/api/groups/{name}/interfaces/{ifname}")
}

func TestLoggingEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	t.Cleanup(func() { logger.ClearComponentLevel("hal") })

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/logging/hal", `{"level":"debug"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var set LoggingLevelResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&set))
	resp.Body.Close()
	assert.Equal(t, "hal", set.Name)
	assert.Equal(t, "debug", set.Level)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/logging", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info LoggingInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	resp.Body.Close()
	assert.NotEmpty(t, info.DefaultLevel)
	assert.Equal(t, "debug", info.Levels["hal"])

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/logging/hal", `{"level":""}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&set))
	resp.Body.Close()
	assert.Equal(t, "default", set.Level)
	assert.NotContains(t, logger.GetComponentLevels(), "hal")

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/logging/hal", `{"level":"loud"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestVersionAndStats(t *testing.T) {
	srv, h := newTestServer(t, nil)
	_ = h.AddGroup(context.Background(), "brlan0", "100")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/version", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats hal.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	require.NotEmpty(t, stats.Ops)
	assert.Equal(t, "add_group", stats.Ops[0].Op)
}
