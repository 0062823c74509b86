package hypixel

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/slothpixel/sloth/internal/util/slotherr"
	"github.com/slothpixel/sloth/internal/util/timer"
)

var mojangTimer = timer.NewMilli("mojang_uuid")

// Mojang resolves player names to uuids.
type Mojang struct {
	BaseURL string
	HTTP    *http.Client
}

func NewMojang(baseURL string, timeout time.Duration) *Mojang {
	return &Mojang{BaseURL: baseURL, HTTP: &http.Client{Timeout: timeout}}
}

// UUID returns the undashed uuid of the account currently named name.
func (m *Mojang) UUID(ctx context.Context, name string) (string, error) {
	defer mojangTimer.One()()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		m.BaseURL+"/users/profiles/minecraft/"+url.PathEscape(name), nil)
	if err != nil {
		return "", slotherr.InternalErrE(err)
	}
	body, err := do(m.HTTP, req)
	if err != nil {
		if slotherr.IsNotFound(err) {
			return "", slotherr.NotFoundF("player %s not found", name)
		}
		return "", err
	}
	id := gjson.GetBytes(body, "id").String()
	if id == "" {
		return "", slotherr.NotFoundF("player %s not found", name)
	}
	return id, nil
}
