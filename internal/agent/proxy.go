package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AnswerRequest is the payload sent to the answer-generation service:
// a question plus the retrieved code snippets that should ground the answer.
type AnswerRequest struct {
	Question string    `json:"question"`
	Context  []Snippet `json:"context"`
}

type Snippet struct {
	FileName string `json:"file_name"`
	Summary  string `json:"summary"`
}

type AnswerResponse struct {
	Answer string `json:"answer"`
}

// AgentProxy talks to the external answer-generation service.
type AgentProxy struct {
	baseURL    string
	httpClient *http.Client
}

func NewAgentProxy(baseURL string) *AgentProxy {
	return &AgentProxy{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Answer asks the agent service to answer a question grounded in the given
// snippets.
func (p *AgentProxy) Answer(ctx context.Context, question string, snippets []Snippet) (string, error) {
	reqBody := AnswerRequest{
		Question: question,
		Context:  snippets,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/answer", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("agent service returned status %d: %s", resp.StatusCode, string(body))
	}

	var answer AnswerResponse
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return answer.Answer, nil
}
