// Package cloud talks to the external AI analysis service. The service
// is a black box reached over HTTP: one multipart submission in, one
// JSON analysis payload out.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/videoaudit/audit-agent/internal/analysis"
)

// uploadResponse is the wire shape of the service answer. Every field
// beyond video_id and analysis is optional.
type uploadResponse struct {
	VideoID         string                 `json:"video_id"`
	VideoURL        string                 `json:"video_url"`
	Analysis        string                 `json:"analysis"`
	RetentionScore  *int                   `json:"retention_score"`
	FinalStatus     string                 `json:"final_status"`
	EditingTimeline []analysis.EditingStep `json:"editing_timeline"`
	Message         string                 `json:"message"`
}

// HTTPClient submits videos to a real analysis service. Transport
// failures are retried with exponential backoff inside the caller's
// deadline; HTTP-status answers are never retried, they are the
// service's answer.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetryElapsed time.Duration
}

func NewHTTPClient(baseURL string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		// no client-level timeout: the submission budget comes from ctx
		httpClient:      &http.Client{},
		logger:          logger,
		maxRetryElapsed: 10 * time.Second,
	}
}

func (c *HTTPClient) SubmitVideo(ctx context.Context, upload analysis.Upload) (*analysis.RemoteResult, error) {
	body, contentType, err := encodeMultipart(upload)
	if err != nil {
		return nil, fmt.Errorf("encode multipart payload: %w", err)
	}

	url := c.baseURL + "/upload"
	requestID := uuid.NewString()

	c.logger.Info("submitting video for analysis",
		"url", url,
		"filename", upload.Filename,
		"body_bytes", len(body),
		"request_id", requestID,
	)

	operation := func() (*analysis.RemoteResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-Audit-Request-Id", requestID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// transport failure, retryable within the budget
			return nil, fmt.Errorf("http request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, backoff.Permanent(&analysis.ServiceError{
				StatusCode: resp.StatusCode,
				Body:       string(respBody),
			})
		}

		var decoded uploadResponse
		if err := json.Unmarshal(respBody, &decoded); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode analysis response: %w", err))
		}

		return &analysis.RemoteResult{
			VideoID:         decoded.VideoID,
			VideoURL:        decoded.VideoURL,
			Analysis:        decoded.Analysis,
			RetentionScore:  decoded.RetentionScore,
			FinalStatus:     decoded.FinalStatus,
			EditingTimeline: decoded.EditingTimeline,
			Message:         decoded.Message,
		}, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = c.maxRetryElapsed

	result, err := backoff.RetryWithData(operation, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, err
	}

	c.logger.Info("analysis response received",
		"video_id", result.VideoID,
		"has_score", result.RetentionScore != nil,
		"timeline_steps", len(result.EditingTimeline),
		"request_id", requestID,
	)
	return result, nil
}

func encodeMultipart(upload analysis.Upload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(upload.Filename)))
	ct := upload.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, upload.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
