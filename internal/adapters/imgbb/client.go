// Package imgbb реализует загрузку изображений на хостинг ImgBB.
package imgbb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
)

// DefaultEndpoint — адрес API загрузки ImgBB.
const DefaultEndpoint = "https://api.imgbb.com/1/upload"

// ErrMissingURL возвращается, если ответ хостинга не содержит data.url.
var ErrMissingURL = errors.New("imgbb response has no data.url")

// Client — клиент API загрузки ImgBB.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает клиента. Пустой endpoint заменяется адресом по умолчанию.
// Таймауты задаются контекстом запроса.
func NewClient(endpoint, apiKey string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type uploadResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// Upload отправляет изображение в поле формы image и возвращает публичный URL.
func (c *Client) Upload(ctx context.Context, name string, data []byte) (string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("image", name)
	if err != nil {
		return "", fmt.Errorf("failed to create form file for %s: %w", name, err)
	}
	if _, err = fw.Write(data); err != nil {
		return "", fmt.Errorf("failed to write file content for %s: %w", name, err)
	}
	if err = w.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &b)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Data.URL == "" {
		return "", ErrMissingURL
	}

	return result.Data.URL, nil
}
