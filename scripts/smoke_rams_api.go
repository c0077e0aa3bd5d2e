package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

// Drives a running server through a full questionnaire and saves the
// resulting document. Every answer is a canned placeholder.
const defaultBaseURL = "http://localhost:8000/api/rams/v1"

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func sendRequest(client *http.Client, method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func must(resp *http.Response, body []byte, err error) []byte {
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode != http.StatusOK {
		color.Red("Status: %s\n%s", resp.Status, body)
		os.Exit(1)
	}
	return body
}

func main() {
	baseURL := os.Getenv("RAMS_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := &http.Client{Timeout: 5 * time.Minute}

	color.Cyan("Starting RAMS API smoke test against %s\n", baseURL)

	// 1. Start
	color.Yellow("\n1. Start session")
	body := must(sendRequest(client, "POST", baseURL+"/session", map[string]string{
		"task": "Replace a section of guttering on a two storey house using a mobile tower",
	}))
	var env envelope
	_ = json.Unmarshal(body, &env)
	var start struct {
		SessionId string `json:"session_id"`
		Question  string `json:"question"`
		Total     int    `json:"total"`
	}
	_ = json.Unmarshal(env.Data, &start)
	color.Green("Session %s, %d questions", start.SessionId, start.Total)

	// 2. Answer
	color.Yellow("\n2. Answer questions")
	question := start.Question
	for i := 1; i <= start.Total; i++ {
		fmt.Printf("  Q%d: %s\n", i, question)
		body = must(sendRequest(client, "POST", baseURL+"/answer", map[string]string{
			"session_id": start.SessionId,
			"answer":     fmt.Sprintf("Site specific answer number %d", i),
		}))
		_ = json.Unmarshal(body, &env)
		var next struct {
			Question string `json:"question"`
			Complete bool   `json:"complete"`
		}
		_ = json.Unmarshal(env.Data, &next)
		question = next.Question
	}

	// 3. Generate
	color.Yellow("\n3. Generate document")
	started := time.Now()
	doc := must(sendRequest(client, "POST", baseURL+"/generate", map[string]string{"session_id": start.SessionId}))
	if err := os.WriteFile("completed_rams.docx", doc, 0o644); err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Saved completed_rams.docx (%d bytes) in %s", len(doc), time.Since(started).Round(time.Second))
}
