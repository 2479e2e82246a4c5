package provider

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

const (
	defaultCloudinaryBaseURL = "https://api.cloudinary.com"
	maxErrorBodyBytes        = 64 << 10
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// SignedUploader posts images to the Cloudinary upload API, authenticating
// each request with a SHA-1 signature over the timestamp and API secret.
type SignedUploader struct {
	creds   SignedCredentials
	client  *http.Client
	baseURL string
	now     func() time.Time
}

func newSignedUploader(c SignedCredentials, o options) *SignedUploader {
	return &SignedUploader{
		creds:   c,
		client:  o.httpClient,
		baseURL: o.baseURL,
		now:     o.now,
	}
}

// Upload sends data as a multipart form and returns the secure_url of the
// created asset.
func (u *SignedUploader) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	timestamp := strconv.FormatInt(u.now().Unix(), 10)

	body, contentType, err := u.buildForm(data, filename, timestamp)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint(), body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", &Error{Provider: Cloudinary, Op: "upload", Detail: err.Error(), Class: ErrTransport, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		detail := strings.TrimSpace(string(raw))
		if detail == "" {
			detail = resp.Status
		}
		return "", &Error{
			Provider:   Cloudinary,
			Op:         "upload",
			StatusCode: resp.StatusCode,
			Detail:     detail,
			Class:      classifyStatus(resp.StatusCode),
		}
	}

	var payload struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &Error{
			Provider:   Cloudinary,
			Op:         "parse response",
			StatusCode: resp.StatusCode,
			Detail:     err.Error(),
			Class:      ErrTransport,
			Cause:      err,
		}
	}
	if payload.SecureURL == "" {
		return "", &Error{
			Provider:   Cloudinary,
			Op:         "parse response",
			StatusCode: resp.StatusCode,
			Detail:     ErrNoURL.Error(),
			Class:      ErrTransport,
			Cause:      ErrNoURL,
		}
	}
	return payload.SecureURL, nil
}

func (u *SignedUploader) endpoint() string {
	return fmt.Sprintf("%s/v1_1/%s/image/upload", u.baseURL, u.creds.CloudName)
}

func (u *SignedUploader) buildForm(data []byte, filename, timestamp string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"timestamp", timestamp},
		{"api_key", u.creds.APIKey},
		{"signature", sign(timestamp, u.creds.APISecret)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// sign computes hex(sha1("timestamp=<ts><secret>")). The secret is appended
// directly, not used as an HMAC key; the upload API expects exactly this.
func sign(timestamp, secret string) string {
	sum := sha1.Sum([]byte("timestamp=" + timestamp + secret))
	return hex.EncodeToString(sum[:])
}

var _ Uploader = (*SignedUploader)(nil)
