package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/pkg/errors"
)

// HTTPClient talks to the launchpad firmware's /api endpoints.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    http.DefaultClient,
	}
}

func (c *HTTPClient) RocketState(ctx context.Context) (model.RocketState, error) {
	var body struct {
		State string `json:"rocket-state"`
	}
	if err := c.get(ctx, "/api/get-rocket-state", &body); err != nil {
		return "", err
	}
	return model.ParseRocketState(body.State), nil
}

func (c *HTTPClient) LaunchpadState(ctx context.Context) (model.LaunchpadState, error) {
	var body struct {
		State string `json:"launchpad-state"`
	}
	if err := c.get(ctx, "/api/get-launchpad-state", &body); err != nil {
		return "", err
	}
	return model.ParseLaunchpadState(body.State), nil
}

func (c *HTTPClient) Pressure(ctx context.Context) (float64, error) {
	var body struct {
		Pressure *float64 `json:"pressure"`
	}
	if err := c.get(ctx, "/api/get-pressure", &body); err != nil {
		return 0, err
	}
	if body.Pressure == nil {
		return 0, errors.New("get-pressure: response has no pressure")
	}
	return *body.Pressure, nil
}

func (c *HTTPClient) WaterVolume(ctx context.Context) (float64, error) {
	var body struct {
		WaterVolume *float64 `json:"water-volume"`
	}
	if err := c.get(ctx, "/api/get-water-volume", &body); err != nil {
		return 0, err
	}
	if body.WaterVolume == nil {
		return 0, errors.New("get-water-volume: response has no water-volume")
	}
	return *body.WaterVolume, nil
}

// Send issues the POST for one action.
func (c *HTTPClient) Send(ctx context.Context, action model.ActionID, params model.Params) error {
	switch action {
	case model.ActionStartFilling:
		q := url.Values{}
		q.Set("water-volume", formatFloat(params.WaterVolume))
		q.Set("pressure", formatFloat(params.Pressure))
		return c.post(ctx, "/api/start-filling?"+q.Encode(), nil)

	case model.ActionRotateServo:
		form := url.Values{}
		form.Set("turns", formatFloat(params.Degrees/360))
		return c.post(ctx, "/api/rotate-servo", form)

	case model.ActionLaunch, model.ActionAbort, model.ActionOpenFairing, model.ActionCloseFairing,
		model.ActionSkipWaterFilling, model.ActionSkipPressurizing:
		return c.post(ctx, "/api/"+string(action), nil)
	}
	return errors.Errorf("action '%s' has no launchpad endpoint", action)
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return errors.Wrapf(err, "GET %s", path)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrapf(err, "GET %s", path)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "GET %s: decode response", path)
	}
	return nil
}

func (c *HTTPClient) post(ctx context.Context, path string, form url.Values) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "POST %s", path)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", path)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	return nil
}

// checkStatus turns a non-2xx response into a StatusError, using the firmware's
// {"status":"error","message":...} body when present. It consumes the body only on failure.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var body struct {
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(data, &body) == nil {
		msg = body.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
