// Package otp is the HTTP client for the OTP-issuing backend.
package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the local OTP backend: one endpoint to issue a code, one
// to verify it.
type Client struct {
	base       string
	httpClient *http.Client
}

func NewClient(base string) *Client {
	return &Client{base: strings.TrimRight(base, "/"), httpClient: &http.Client{Timeout: 10 * time.Second}}
}

type otpResponse struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	if c.base == "" {
		return errors.New("otp backend url not configured")
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("otp backend unreachable: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("otp backend status %d: %s", res.StatusCode, string(body))
	}
	var out otpResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("otp backend decode: %w", err)
	}
	if !out.Success {
		if out.Detail != "" {
			return errors.New(out.Detail)
		}
		return errors.New("otp backend rejected the request")
	}
	return nil
}

// Request asks the backend to deliver a code to the email or mobile
// identifier.
func (c *Client) Request(ctx context.Context, identifier string) error {
	payload := map[string]string{"mobile": identifier}
	if strings.Contains(identifier, "@") {
		payload = map[string]string{"email": identifier}
	}
	return c.post(ctx, "/otp/request", payload)
}

// Verify checks a previously issued code.
func (c *Client) Verify(ctx context.Context, key, code string) error {
	return c.post(ctx, "/otp/verify", map[string]string{"key": key, "otp": code})
}
