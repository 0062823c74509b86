package hypixel

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"github.com/slothpixel/sloth/internal/util/slotherr"
)

const testURL = "http://hypixel.test"

func mockClient() (*Client, *httpmock.MockTransport) {
	transport := httpmock.NewMockTransport()
	c := &Client{BaseURL: testURL, APIKey: "key", HTTP: &http.Client{Transport: transport}}
	return c, transport
}

func TestGet(t *testing.T) {
	c, transport := mockClient()
	transport.RegisterResponder("GET", testURL+"/boosters",
		func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "key", req.Header.Get("API-Key"))
			return httpmock.NewStringResponse(200, `{"success":true,"boosters":[]}`), nil
		})

	body, err := c.Get(context.Background(), "/boosters")
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"boosters":[]}`, string(body))
	require.Equal(t, 1, transport.GetCallCountInfo()["GET "+testURL+"/boosters"])
}

func TestGetFailures(t *testing.T) {
	c, transport := mockClient()
	transport.RegisterResponder("GET", testURL+"/unsuccessful",
		httpmock.NewStringResponder(200, `{"success":false,"cause":"Invalid API key"}`))
	transport.RegisterResponder("GET", testURL+"/missing",
		httpmock.NewStringResponder(404, ``))
	transport.RegisterResponder("GET", testURL+"/broken",
		httpmock.NewStringResponder(503, `down`))
	transport.RegisterResponder("GET", testURL+"/garbage",
		httpmock.NewStringResponder(200, `{"success":`))

	ctx := context.Background()
	_, err := c.Get(ctx, "/unsuccessful")
	require.ErrorContains(t, err, "Invalid API key")
	require.Equal(t, slotherr.UpstreamError, slotherr.TypeOf(err))

	_, err = c.Get(ctx, "/missing")
	require.True(t, slotherr.IsNotFound(err))

	_, err = c.Get(ctx, "/broken")
	require.Equal(t, slotherr.UpstreamError, slotherr.TypeOf(err))

	_, err = c.Get(ctx, "/garbage")
	require.Equal(t, slotherr.UpstreamError, slotherr.TypeOf(err))
}

func TestGetCancelled(t *testing.T) {
	c, transport := mockClient()
	transport.RegisterResponder("GET", testURL+"/boosters", httpmock.NewStringResponder(200, `{}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx, "/boosters")
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerateJob(t *testing.T) {
	require.Equal(t, Job{Kind: RecentGamesJob, Path: "/recentgames?uuid=abc"},
		GenerateJob(RecentGamesJob, "abc"))
	require.Equal(t, "/guild?player=a+b%26c", GenerateJob(GuildJob, "a b&c").Path)
	require.Equal(t, "/boosters", GenerateJob(BoostersJob, "ignored").Path)
	require.Panics(t, func() { GenerateJob("nope", "") })
}

func TestMojangUUID(t *testing.T) {
	transport := httpmock.NewMockTransport()
	m := &Mojang{BaseURL: "http://mojang.test", HTTP: &http.Client{Transport: transport}}
	transport.RegisterResponder("GET", "http://mojang.test/users/profiles/minecraft/sloth",
		httpmock.NewStringResponder(200, `{"id":"2b4fbb0a1f4b4a5a9b2b8e3b0c1d2e3f","name":"sloth"}`))
	transport.RegisterResponder("GET", "http://mojang.test/users/profiles/minecraft/nobody",
		httpmock.NewStringResponder(204, ``))

	id, err := m.UUID(context.Background(), "sloth")
	require.NoError(t, err)
	require.Equal(t, "2b4fbb0a1f4b4a5a9b2b8e3b0c1d2e3f", id)

	_, err = m.UUID(context.Background(), "nobody")
	require.True(t, slotherr.IsNotFound(err))
	require.ErrorContains(t, err, "nobody")
}
