// Package hypixel reads the upstream game API and the Mojang name service.
package hypixel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/slothpixel/sloth/internal/util/slothlog"
	"github.com/slothpixel/sloth/internal/util/slotherr"
	"github.com/slothpixel/sloth/internal/util/timer"
)

var logger = slothlog.SubLogger("hypixel")

var getTimer = timer.NewMilli("hypixel_get")

// Client calls the game API. Every call carries the API key.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Get returns the body of a successful reply. Missing resources are NotFound errors,
// everything else that fails is an upstream error.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	defer getTimer.One()()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, slotherr.InternalErrE(err)
	}
	if c.APIKey != "" {
		req.Header.Set("API-Key", c.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	body, err := do(c.HTTP, req)
	if err != nil {
		return nil, err
	}
	if success := gjson.GetBytes(body, "success"); success.Exists() && !success.Bool() {
		cause := gjson.GetBytes(body, "cause").String()
		logger.WarnT(slothlog.Tags(slothlog.Str("path", path), slothlog.Str("cause", cause)),
			"Upstream call unsuccessful")
		return nil, slotherr.UpstreamF("%s unsuccessful: %s", path, cause)
	}
	return body, nil
}

func do(client *http.Client, req *http.Request) ([]byte, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, slotherr.UpstreamE(req.URL.Path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound:
		return nil, slotherr.NotFoundF("%s not found", req.URL.Path)
	case resp.StatusCode/100 != 2:
		return nil, slotherr.UpstreamF("%s HTTP status %q, want 2xx", req.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, slotherr.UpstreamE(req.URL.Path, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, slotherr.UpstreamF("%s returned invalid JSON", req.URL.Path)
	}
	return body, nil
}

// Job names one upstream resource. Path is relative to the API root and doubles as the
// cache key of the payload.
type Job struct {
	Kind string
	Path string
}

const (
	PlayerJob           = "player"
	RecentGamesJob      = "recentgames"
	GuildJob            = "guild"
	SkyblockProfilesJob = "skyblock_profiles"
	BoostersJob         = "boosters"
	PunishmentStatsJob  = "punishmentstats"
	BazaarJob           = "skyblock_bazaar"
)

var jobPaths = map[string]string{
	PlayerJob:           "/player?uuid=%s",
	RecentGamesJob:      "/recentgames?uuid=%s",
	GuildJob:            "/guild?player=%s",
	SkyblockProfilesJob: "/skyblock/profiles?uuid=%s",
	BoostersJob:         "/boosters",
	PunishmentStatsJob:  "/punishmentstats",
	BazaarJob:           "/skyblock/bazaar",
}

// GenerateJob panics on an unknown kind. id is ignored by the kinds without a parameter.
func GenerateJob(kind, id string) Job {
	path, ok := jobPaths[kind]
	if !ok {
		panic(fmt.Sprintf("unknown job kind %q", kind))
	}
	if strings.Contains(path, "%s") {
		path = fmt.Sprintf(path, url.QueryEscape(id))
	}
	return Job{Kind: kind, Path: path}
}
