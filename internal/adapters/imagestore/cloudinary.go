package imagestore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"eventmarket/internal/domain"
)

const defaultBaseURL = "https://api.cloudinary.com/v1_1"

// Config holds Cloudinary credentials. An empty CloudName selects the no-op
// store, matching local development without an account.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
}

// New creates an image store from config.
func New(config Config, client *http.Client) domain.ImageStore {
	if config.CloudName == "" {
		log.Printf("[IMAGESTORE] No Cloudinary cloud name configured, using noop store")
		return &noopStore{}
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &cloudinaryStore{
		client:    client,
		baseURL:   defaultBaseURL,
		cloudName: config.CloudName,
		apiKey:    config.APIKey,
		apiSecret: config.APISecret,
	}
}

type cloudinaryStore struct {
	client    *http.Client
	baseURL   string
	cloudName string
	apiKey    string
	apiSecret string
}

// publicIDFromURL derives the Cloudinary public ID from a delivery URL:
// everything after the /upload/ segment, minus the version prefix and the
// file extension.
func publicIDFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}
	_, after, found := strings.Cut(u.Path, "/upload/")
	if !found || after == "" {
		return "", fmt.Errorf("not a cloudinary delivery url: %s", rawURL)
	}
	parts := strings.Split(after, "/")
	if len(parts) > 1 && len(parts[0]) > 1 && parts[0][0] == 'v' && isDigits(parts[0][1:]) {
		parts = parts[1:]
	}
	publicID := strings.Join(parts, "/")
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	if publicID == "" {
		return "", fmt.Errorf("empty public id in url: %s", rawURL)
	}
	return publicID, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type destroyResponse struct {
	Result string `json:"result"`
}

func (c *cloudinaryStore) Delete(ctx context.Context, rawURL string) error {
	publicID, err := publicIDFromURL(rawURL)
	if err != nil {
		return err
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.apiSecret)
	sum := sha1.Sum([]byte(payload))

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", c.apiKey)
	form.Set("signature", hex.EncodeToString(sum[:]))

	endpoint := fmt.Sprintf("%s/%s/image/destroy", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call cloudinary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cloudinary returned status: %d", resp.StatusCode)
	}
	var data destroyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode cloudinary response: %w", err)
	}
	// "not found" means the asset is already gone; deletion is idempotent.
	if data.Result != "ok" && data.Result != "not found" {
		return fmt.Errorf("cloudinary destroy failed: %s", data.Result)
	}
	return nil
}

type noopStore struct{}

func (n *noopStore) Delete(ctx context.Context, rawURL string) error {
	log.Println("[IMAGESTORE] Image would be deleted (noop)", "url", rawURL)
	return nil
}
