package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxResponseBytes = 1 << 20

type unsplashPhoto struct {
	URLs struct {
		Regular string `json:"regular"`
	} `json:"urls"`
}

// Unsplash fetches random photos from the Unsplash API.
type Unsplash struct {
	baseURL   string
	accessKey string
	client    *http.Client
}

func NewUnsplash(baseURL, accessKey string, timeout time.Duration) *Unsplash {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Unsplash{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: strings.TrimSpace(accessKey),
		client:    &http.Client{Timeout: timeout},
	}
}

func (u *Unsplash) FetchRandomImage(ctx context.Context) (string, error) {
	if u.accessKey == "" {
		return "", errors.New("unsplash access key is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.baseURL+"/photos/random", nil)
	if err != nil {
		return "", fmt.Errorf("build unsplash request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+u.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reach unsplash: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read unsplash response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unsplash returned status %d", resp.StatusCode)
	}
	var photo unsplashPhoto
	if err := json.Unmarshal(body, &photo); err != nil {
		return "", fmt.Errorf("decode unsplash response: %w", err)
	}
	url := strings.TrimSpace(photo.URLs.Regular)
	if url == "" {
		return "", errors.New("image url not found in unsplash response")
	}
	return url, nil
}
