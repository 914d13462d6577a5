package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penalty-kick/backend/internal/game"
	"penalty-kick/backend/internal/telemetry"
	"penalty-kick/backend/internal/transport/ws"
)

type fixedStats map[string]interface{}

func (s fixedStats) GetStats() map[string]interface{} {
	out := make(map[string]interface{}, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func testMux(t *testing.T) (*httptest.Server, *telemetry.Manager) {
	t.Helper()
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>penalty</html>"), 0o644))

	tm := telemetry.NewManager(10, zerolog.Nop())
	mux := newMux(ws.NewWSServer(nil, zerolog.Nop()), tm, fixedStats{"target_tps": 60}, static, zerolog.Nop())
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, tm
}

func TestMux_Telemetry(t *testing.T) {
	server, tm := testMux(t)
	tm.Observe(game.Event{Kind: game.EventGoal, Planet: "earth"})

	resp, err := http.Get(server.URL + "/telemetry")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var summary telemetry.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Counters["goal"])
}

func TestMux_Stats(t *testing.T) {
	server, _ := testMux(t)

	resp, err := http.Get(server.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 60.0, stats["target_tps"])
	assert.Equal(t, 0.0, stats["clients"])
}

func TestMux_Static(t *testing.T) {
	server, _ := testMux(t)

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "penalty")
}
