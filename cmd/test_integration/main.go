package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Smoke test against a running server. TOKEN must hold a bearer token, as
// printed by `automationvault token <user-id>`.
func main() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	token := os.Getenv("TOKEN")
	if token == "" {
		fmt.Println("TOKEN is required")
		os.Exit(1)
	}

	c := &client{baseURL: baseURL, token: token, http: &http.Client{Timeout: 90 * time.Second}}

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Health check...")
	c.mustStatus("GET", "/healthz", nil, http.StatusOK, nil)
	fmt.Println("PASSED: Health check")

	fmt.Println("2. Ingesting workflow...")
	workflow := map[string]any{
		"workflowJson": map[string]any{
			"name": fmt.Sprintf("Smoke Test Workflow %d", time.Now().Unix()),
			"nodes": []map[string]any{
				{"name": "Webhook", "type": "n8n-nodes-base.webhook"},
				{"name": "Slack", "type": "n8n-nodes-base.slack"},
			},
			"connections": map[string]any{},
		},
	}
	var created struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	c.mustStatus("POST", "/api/automations", workflow, http.StatusCreated, &created)
	fmt.Printf("PASSED: Ingested %q as %s\n", created.Title, created.ID)

	fmt.Println("3. Searching catalog...")
	var list struct {
		Automations []struct {
			ID string `json:"id"`
		} `json:"automations"`
	}
	c.mustStatus("GET", "/api/automations", nil, http.StatusOK, &list)
	found := false
	for _, a := range list.Automations {
		found = found || a.ID == created.ID
	}
	if !found {
		fail("ingested automation missing from catalog")
	}
	fmt.Println("PASSED: Search")

	fmt.Println("4. Downloading...")
	c.mustStatus("POST", "/api/automations/"+created.ID+"/download", nil, http.StatusOK, nil)
	c.mustStatus("POST", "/api/automations/"+created.ID+"/download", nil, http.StatusConflict, nil)
	fmt.Println("PASSED: Download recorded once")

	fmt.Println("5. Download history...")
	var hist struct {
		Downloads []struct {
			AutomationID string `json:"automation_id"`
		} `json:"downloads"`
	}
	c.mustStatus("GET", "/api/downloads", nil, http.StatusOK, &hist)
	if len(hist.Downloads) == 0 || hist.Downloads[0].AutomationID != created.ID {
		fail("latest download missing from history")
	}
	fmt.Println("PASSED: Download history")
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func (c *client) mustStatus(method, endpoint string, payload any, want int, out any) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			fail(err.Error())
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, body)
	if err != nil {
		fail(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		fail(fmt.Sprintf("%s %s: %v", method, endpoint, err))
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		fail(fmt.Sprintf("%s %s: status %d, want %d: %s", method, endpoint, resp.StatusCode, want, respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			fail(fmt.Sprintf("%s %s: decoding response: %v", method, endpoint, err))
		}
	}
}

func fail(msg string) {
	fmt.Println("FAILED:", msg)
	os.Exit(1)
}
