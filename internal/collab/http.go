package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient talks JSON to the backend assessment services. One client
// covers all five collaborator contracts; each lives under its own path.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NextQuestion implements QuestionGenerator.
func (c *HTTPClient) NextQuestion(ctx context.Context, req QuestionRequest) (*Question, error) {
	var q Question
	if err := c.post(ctx, "/api/assessment/question", req, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Validate implements Validator.
func (c *HTTPClient) Validate(ctx context.Context, questionID, answer string) (*ValidationResult, error) {
	body := map[string]string{"questionId": questionID, "answer": answer}
	var res ValidationResult
	if err := c.post(ctx, "/api/assessment/validate", body, &res); err != nil {
		return nil, &ValidationError{QuestionID: questionID, Err: err}
	}
	return &res, nil
}

// Analyze implements SpeechAnalyzer.
func (c *HTTPClient) Analyze(ctx context.Context, req SpeechRequest) (*SpeechAnalysis, error) {
	var res SpeechAnalysis
	if err := c.post(ctx, "/api/speech/analyze", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Complete implements Completer.
func (c *HTTPClient) Complete(ctx context.Context, sub Submission) (*CompletionResult, error) {
	var res CompletionResult
	if err := c.post(ctx, "/api/assessment/complete", sub, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Create implements SessionService. Failure is wrapped as a
// SessionAllocationError since the flow cannot start without a session ID.
func (c *HTTPClient) Create(ctx context.Context, learnerID string) (string, error) {
	body := map[string]string{"learnerId": learnerID}
	var res struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.post(ctx, "/api/sessions", body, &res); err != nil {
		return "", &SessionAllocationError{Err: err}
	}
	return res.SessionID, nil
}

// Update implements SessionService. Best-effort: callers log and continue
// on failure, the client-side snapshot remains authoritative.
func (c *HTTPClient) Update(ctx context.Context, rec SessionRecord) error {
	return c.post(ctx, "/api/sessions/"+rec.SessionID, rec, nil)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: "POST " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &NetworkError{Op: "POST " + path, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
