package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLaunchpadServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL + "/")
}

func TestHTTPClient_States(t *testing.T) {
	c := newLaunchpadServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/get-rocket-state":
			_, _ = io.WriteString(w, `{"rocket-state":"IDLING_CLOSED"}`)
		case "/api/get-launchpad-state":
			_, _ = io.WriteString(w, `{"launchpad-state":"IDLE"}`)
		case "/api/get-pressure":
			_, _ = io.WriteString(w, `{"pressure":1.25}`)
		case "/api/get-water-volume":
			_, _ = io.WriteString(w, `{"water-volume":0.4}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	rs, err := c.RocketState(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RocketIdlingClosed, rs)

	ls, err := c.LaunchpadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.LaunchpadIdling, ls)

	p, err := c.Pressure(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.25, p)

	v, err := c.WaterVolume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.4, v)
}

func TestHTTPClient_StatusError(t *testing.T) {
	c := newLaunchpadServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"status":"error","message":"Valeur de pression invalide"}`)
	})

	err := c.Send(context.Background(), model.ActionStartFilling, model.Params{WaterVolume: 1, Pressure: 50})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "Valeur de pression invalide", se.Message)
}

func TestHTTPClient_StatusErrorPlainBody(t *testing.T) {
	c := newLaunchpadServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.RocketState(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusText(http.StatusServiceUnavailable), se.Message)
}

func TestHTTPClient_SendStartFilling(t *testing.T) {
	var got *http.Request
	c := newLaunchpadServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = io.WriteString(w, `{"status":"success"}`)
	})

	err := c.Send(context.Background(), model.ActionStartFilling, model.Params{WaterVolume: 0.75, Pressure: 6})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/start-filling", got.URL.Path)
	assert.Equal(t, "0.75", got.URL.Query().Get("water-volume"))
	assert.Equal(t, "6", got.URL.Query().Get("pressure"))
}

func TestHTTPClient_SendRotateServo(t *testing.T) {
	var turns string
	c := newLaunchpadServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		turns = r.PostForm.Get("turns")
	})

	require.NoError(t, c.Send(context.Background(), model.ActionRotateServo, model.Params{Degrees: -90}))
	assert.Equal(t, "-0.25", turns)
}

func TestHTTPClient_SendSimpleActions(t *testing.T) {
	var paths []string
	c := newLaunchpadServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
	})

	for _, a := range []model.ActionID{model.ActionLaunch, model.ActionAbort, model.ActionSkipPressurizing} {
		require.NoError(t, c.Send(context.Background(), a, model.Params{}))
	}
	assert.Equal(t, []string{"/api/launch", "/api/abort", "/api/skip-pressurizing"}, paths)
}

func TestHTTPClient_SendUnsupported(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1")
	err := c.Send(context.Background(), model.ActionEditFillTargets, model.Params{})
	assert.Error(t, err)
}
