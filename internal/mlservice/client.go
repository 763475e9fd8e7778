// Package mlservice is a client for the ML service API, which hosts the two
// pre-trained models and the fine-tuning framework.
package mlservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a client for the ML service API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// Training can run for minutes, so it gets its own client without the
	// inference timeout.
	trainClient *http.Client
}

// ClassifyRequest represents a single text classification request.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// BinaryResult is the binary model's prediction for a text.
type BinaryResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ZeroShotRequest represents a zero-shot classification request.
type ZeroShotRequest struct {
	Text            string   `json:"text"`
	CandidateLabels []string `json:"candidate_labels"`
}

// ZeroShotResult holds candidate labels ranked by confidence, best first.
type ZeroShotResult struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// TrainBinaryRequest carries a pre-split dataset and hyperparameters for
// fine-tuning the binary model.
type TrainBinaryRequest struct {
	TrainTexts  []string `json:"train_texts"`
	TrainLabels []int    `json:"train_labels"`
	ValTexts    []string `json:"val_texts"`
	Epochs      int      `json:"epochs"`
	BatchSize   int      `json:"batch_size"`
}

// TrainBinaryResponse holds the fine-tuned model's predictions for the
// validation texts, in request order.
type TrainBinaryResponse struct {
	Predictions []int `json:"predictions"`
}

// NewClient creates a new ML service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		trainClient: &http.Client{},
	}
}

// ClassifyBinary runs the binary malicious/benign model on a text.
func (c *Client) ClassifyBinary(ctx context.Context, text string) (*BinaryResult, error) {
	var result BinaryResult
	if err := c.postJSON(ctx, c.httpClient, "/api/v1/classify/binary", ClassifyRequest{Text: text}, &result); err != nil {
		return nil, err
	}
	if result.Label == "" {
		return nil, fmt.Errorf("ML service returned an empty binary prediction")
	}
	return &result, nil
}

// ClassifyZeroShot ranks the candidate labels for a text with the zero-shot
// model.
func (c *Client) ClassifyZeroShot(ctx context.Context, text string, labels []string) (*ZeroShotResult, error) {
	var result ZeroShotResult
	req := ZeroShotRequest{Text: text, CandidateLabels: labels}
	if err := c.postJSON(ctx, c.httpClient, "/api/v1/classify/zero-shot", req, &result); err != nil {
		return nil, err
	}
	if len(result.Labels) == 0 || len(result.Labels) != len(result.Scores) {
		return nil, fmt.Errorf("ML service returned a malformed zero-shot prediction")
	}
	return &result, nil
}

// TrainBinary fine-tunes the binary model on the train split and returns the
// resulting predictions for the validation split. Blocks until training
// finishes.
func (c *Client) TrainBinary(ctx context.Context, req TrainBinaryRequest) (*TrainBinaryResponse, error) {
	var result TrainBinaryResponse
	if err := c.postJSON(ctx, c.trainClient, "/api/v1/train/binary", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) postJSON(ctx context.Context, client *http.Client, path string, reqBody, result interface{}) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ML service returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
