package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/timeboxai/timebox/internal/models"
)

// apiClient is the TUI's view of the daemon. The TUI holds no timer state of
// its own; everything on screen comes from these calls.
type apiClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newAPIClient(baseURL, apiKey string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *apiClient) getStatus() (models.TimerStatus, error) {
	var status models.TimerStatus
	err := c.do(http.MethodGet, "/timer/status", nil, &status)
	return status, err
}

func (c *apiClient) startTimer(durationMinutes int, label string) (models.Session, error) {
	body := map[string]any{
		"duration_minutes": durationMinutes,
		"label":            label,
		"origin":           string(models.OriginHuman),
	}
	var session models.Session
	err := c.do(http.MethodPost, "/timer/start", body, &session)
	return session, err
}

func (c *apiClient) stopTimer() (models.Session, error) {
	var session models.Session
	err := c.do(http.MethodPost, "/timer/stop", nil, &session)
	return session, err
}

func (c *apiClient) getHistory() ([]models.Session, error) {
	var resp struct {
		Sessions []models.Session `json:"sessions"`
	}
	err := c.do(http.MethodGet, "/sessions", nil, &resp)
	return resp.Sessions, err
}

func (c *apiClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("timebox daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}
