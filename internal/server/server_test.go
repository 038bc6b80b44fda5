package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"paper-analytics/config"
	"paper-analytics/internal/mocks"
	"paper-analytics/internal/response"
	"paper-analytics/internal/service"
	"paper-analytics/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeHandlesRequestsAndShutsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := new(mocks.MockEngine)
	conf := config.Config{
		Workflow: config.Workflow{DiscoveryUrl: "https://engine.test/d", ExtractionUrl: "https://engine.test/e"},
		Polling:  config.Polling{DiscoveryIntervalSec: 1, ExtractionIntervalSec: 1, DiscoveryWindowSec: 30, ExtractionWindowSec: 300},
	}
	svc := &service.Service{
		Engine:   engine,
		Sessions: service.NewSessions(2, service.NewOrchestratorFactory(engine, conf)),
	}
	sess, err := svc.Sessions.Create()
	require.NoError(t, err)
	views, cancelSub := sess.Subscribe()
	defer cancelSub()
	<-views

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, svc) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	var body response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Zero(t, body.Error)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	// Shutdown resets sessions and ends their streams.
	for v := range views {
		assert.Equal(t, workflow.StepInput, v.Step)
	}
}
