package media

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/satindergrewal/lofistudio/internal/errors"
)

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 512

// ImageClient fetches background images from a prompt-to-image service that
// serves GET <base>/<prompt>?width=W&height=H.
type ImageClient struct {
	baseURL string
	width   int
	height  int
	http    *http.Client
	limiter *rate.Limiter
}

// NewImageClient creates an image client. perSecond <= 0 disables
// client-side rate limiting.
func NewImageClient(baseURL string, width, height int, timeout time.Duration, perSecond float64) *ImageClient {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &ImageClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		width:   width,
		height:  height,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// URL builds the request URL for a prompt.
func (c *ImageClient) URL(prompt string) string {
	q := url.Values{}
	q.Set("width", strconv.Itoa(c.width))
	q.Set("height", strconv.Itoa(c.height))
	q.Set("nologo", "true")
	return c.baseURL + "/" + url.PathEscape(prompt) + "?" + q.Encode()
}

// Fetch downloads the image for prompt to dst. A non-200 reply is returned
// as a *errors.StatusError and leaves no file behind.
func (c *ImageClient) Fetch(ctx context.Context, prompt, dst string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("image rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.URL(prompt), nil)
	if err != nil {
		return fmt.Errorf("image request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &apperrors.StatusError{
			Service: "image",
			Status:  resp.StatusCode,
			Body:    strings.TrimSpace(string(body)),
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".image-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write image: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save image: %w", err)
	}

	log.Printf("Image fetched: %s (%d bytes)", filepath.Base(dst), n)
	return nil
}
