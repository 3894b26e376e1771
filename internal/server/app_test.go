package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/server/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testAppConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.SecretKey = "app-test-secret"
	c.DatabaseDSN = "file:app_" + uuid.NewString() + "?mode=memory&cache=shared"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.LogLevel = "error"
	return c
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	c := testAppConfig()
	c.SecretKey = ""

	_, err := NewApp(context.Background(), c)
	require.ErrorContains(t, err, "secret key is not configured")
}

func TestNewApp_UnsupportedDriver(t *testing.T) {
	c := testAppConfig()
	c.DatabaseDriver = "oracle"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testAppConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
