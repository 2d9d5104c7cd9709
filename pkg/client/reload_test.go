package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meterbridge/telemetry-go/pkg/config"
	"github.com/meterbridge/telemetry-go/pkg/contracts"
	"github.com/meterbridge/telemetry-go/pkg/transport"
)

const ingestionOK = `{"itemsReceived":1,"itemsAccepted":1,"errors":[]}`

func TestPublishersFromConfigAttachesAuthPerEndpoint(t *testing.T) {
	var mu sync.Mutex
	authByPath := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		authByPath[r.URL.Path] = r.Header.Get("Authorization")
		mu.Unlock()
		_, _ = w.Write([]byte(ingestionOK))
	}))
	defer srv.Close()

	cfg := &config.Config{
		InstrumentationKey: "ikey-1",
		Endpoints: []config.EndpointConfig{
			{URL: srv.URL + "/auth/v2/track", UseAuth: true},
			{URL: srv.URL + "/plain/v2/track"},
		},
	}

	publishers, err := PublishersFromConfig(cfg, transport.StaticTokenProvider("tok-1"), nil)
	require.NoError(t, err)
	require.Len(t, publishers, 2)

	c, err := New(publishers)
	require.NoError(t, err)
	c.Add(&contracts.Event{Name: "reload"})

	results := c.PublishAsync(context.Background())
	require.Len(t, results, 2)
	for _, res := range results {
		assert.True(t, res.Success)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer tok-1", authByPath["/auth/v2/track"])
	assert.Empty(t, authByPath["/plain/v2/track"], "key-only endpoint must not send Authorization")
}

func TestPublishersFromConfigRequiresProviderForAuth(t *testing.T) {
	cfg := &config.Config{
		InstrumentationKey: "ikey-1",
		Endpoints: []config.EndpointConfig{
			{URL: "https://dc.example.com/v2/track", UseAuth: true},
		},
	}

	_, err := PublishersFromConfig(cfg, nil, nil)
	assert.ErrorContains(t, err, "use_auth")
}

func TestSwapPublishersRejectsEmptySet(t *testing.T) {
	pub := newCountingPublisher("https://a/v2/track", transport.Result{Success: true})
	c, err := New([]transport.Publisher{pub})
	require.NoError(t, err)

	assert.ErrorIs(t, c.SwapPublishers(nil), ErrNoPublishers)
}

func TestSwapPublishersTakesEffectOnNextPublish(t *testing.T) {
	oldPub := newCountingPublisher("https://old/v2/track", transport.Result{Success: true})
	newPub := newCountingPublisher("https://new/v2/track", transport.Result{Success: true})
	c, err := New([]transport.Publisher{oldPub})
	require.NoError(t, err)

	c.Add(&contracts.Event{Name: "before"})
	require.Len(t, c.PublishAsync(context.Background()), 1)

	require.NoError(t, c.SwapPublishers([]transport.Publisher{newPub}))
	c.Add(&contracts.Event{Name: "after"})
	require.Len(t, c.PublishAsync(context.Background()), 1)

	assert.Equal(t, int64(1), oldPub.calls.Load())
	assert.Equal(t, int64(1), newPub.calls.Load())
}

func TestReloadFromFileRebuildsPublisherSet(t *testing.T) {
	var hits int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		_, _ = w.Write([]byte(ingestionOK))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "meterbridge.yaml")
	content := fmt.Sprintf("instrumentation_key: ikey-1\nendpoints:\n  - url: %s/v2/track\n", srv.URL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	stale := newCountingPublisher("https://stale/v2/track", transport.Result{Success: true})
	c, err := New([]transport.Publisher{stale})
	require.NoError(t, err)

	require.NoError(t, c.ReloadFromFile(path, nil, nil))

	c.Add(&contracts.Event{Name: "rerouted"})
	results := c.PublishAsync(context.Background())
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, hits, "publish goes to the reloaded endpoint")
	assert.Zero(t, stale.calls.Load(), "stale publisher is out of rotation")
}

func TestReloadFromFileKeepsOldSetOnError(t *testing.T) {
	pub := newCountingPublisher("https://keep/v2/track", transport.Result{Success: true})
	c, err := New([]transport.Publisher{pub})
	require.NoError(t, err)

	badPath := filepath.Join(t.TempDir(), "absent.yaml")
	require.Error(t, c.ReloadFromFile(badPath, nil, nil))

	c.Add(&contracts.Event{Name: "still-here"})
	require.Len(t, c.PublishAsync(context.Background()), 1)
	assert.Equal(t, int64(1), pub.calls.Load())
}
