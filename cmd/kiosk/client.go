package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"izakaya/answer/domain"
	"izakaya/menu"
)

// apiClient fala com o servidor izakaya.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string { return fmt.Sprintf("api: %d %s", e.Status, e.Message) }

func (c *apiClient) Ask(ctx context.Context, question string) (domain.Result, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return domain.Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate-answer", bytes.NewReader(body))
	if err != nil {
		return domain.Result{}, fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Result{}, fmt.Errorf("api: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return domain.Result{}, &apiError{Status: resp.StatusCode, Message: e.Error}
	}

	var res domain.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return domain.Result{}, fmt.Errorf("api: decode answer: %w", err)
	}
	return res, nil
}

func (c *apiClient) Dish(ctx context.Context) (menu.Dish, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/dish", nil)
	if err != nil {
		return menu.Dish{}, fmt.Errorf("api: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return menu.Dish{}, fmt.Errorf("api: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return menu.Dish{}, &apiError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	var d menu.Dish
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return menu.Dish{}, fmt.Errorf("api: decode dish: %w", err)
	}
	return d, nil
}
