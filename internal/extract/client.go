package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"eventcal/internal/config"
	"eventcal/internal/errs"
	"eventcal/internal/log"
	"eventcal/internal/model"
)

// Client calls the Gemini generateContent endpoint. Retries are not
// done here; the caller wraps Extract in a retry policy so one HTTP
// round trip maps to one attempt.
type Client struct {
	http   *resty.Client
	model  string
	apiKey string
}

// NewClient builds a client from the API section of the config.
func NewClient(cfg config.APIConfig, apiKey string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.Endpoint).
			SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
			SetHeader("Content-Type", "application/json"),
		model:  cfg.Model,
		apiKey: apiKey,
	}
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents []struct {
		Parts []generatePart `json:"parts"`
	} `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Extract sends one generateContent call and parses the reply into
// raw candidates.
func (c *Client) Extract(ctx context.Context, req Request) ([]model.RawEventCandidate, error) {
	parts := []generatePart{{Text: buildPrompt(req)}}
	for _, img := range req.Images {
		parts = append(parts, generatePart{InlineData: &inlineData{
			MIMEType: img.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(img.Data),
		}})
	}

	var body generateRequest
	body.Contents = make([]struct {
		Parts []generatePart `json:"parts"`
	}, 1)
	body.Contents[0].Parts = parts

	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(&body).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("/models/%s:generateContent", c.model))
	if err != nil {
		// Transport-level failures (dial, TLS, deadline) are the
		// transient class; the status-based split below never runs.
		return nil, errs.Wrap(err, errs.CodeRetryableCall, "extraction request failed")
	}

	if resp.IsError() {
		return nil, callError(resp.StatusCode(), apiMessage(&out))
	}

	reply := replyText(&out)
	log.Debug("extraction reply received", "status", resp.StatusCode(), "reply_bytes", len(reply))
	return parseCandidates(reply)
}

// callError maps an HTTP status to a typed call failure. Auth, quota
// and bad-request statuses cannot be fixed by retrying.
func callError(status int, msg string) error {
	code := errs.CodeRetryableCall
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		code = errs.CodePermanentCall
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return errs.Newf(code, "extraction service returned %d: %s", status, msg)
}

func apiMessage(out *generateResponse) string {
	if out.Error == nil {
		return ""
	}
	if out.Error.Status != "" {
		return out.Error.Status + ": " + out.Error.Message
	}
	return out.Error.Message
}

// replyText concatenates the text parts of the first candidate.
func replyText(out *generateResponse) string {
	if len(out.Candidates) == 0 {
		return ""
	}
	var s string
	for _, p := range out.Candidates[0].Content.Parts {
		s += p.Text
	}
	return s
}
