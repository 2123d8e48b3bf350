package share

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"wahlnetz-service/internal/domain"
)

// maxResponseBytes bounds how much of an image host response is read.
const maxResponseBytes = 1 << 20

// HostUploader posts images to an imgbb-compatible host: multipart field "image",
// API key in the "key" query parameter, JSON reply {"success":true,"data":{"url":...}}.
type HostUploader struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHostUploader(endpoint, apiKey string, timeout time.Duration) *HostUploader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HostUploader{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (u *HostUploader) Upload(ctx context.Context, img domain.Image) (string, error) {
	if u.endpoint == "" {
		return "", errors.New("image host not configured")
	}
	if len(img.Data) == 0 {
		return "", errors.New("empty image")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "wahlnetz"+img.Format.Ext())
	if err != nil {
		return "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	target, err := url.Parse(u.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse upload endpoint: %w", err)
	}
	if u.apiKey != "" {
		q := target.Query()
		q.Set("key", u.apiKey)
		target.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	var payload uploadResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := payload.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("image host returned %d: %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode upload response: %w", decodeErr)
	}
	if !payload.Success || payload.Data.URL == "" {
		return "", fmt.Errorf("image host rejected upload: %s", payload.Error.Message)
	}
	return payload.Data.URL, nil
}
