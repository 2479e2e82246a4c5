// Package provider uploads image bytes to a remote store and returns the
// public URL. Exactly two variants exist, selected by the credential type
// passed to New: a signed multipart HTTP API (Cloudinary) and an
// S3-compatible object store (Cloudflare R2 or any MinIO-compatible service).
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Kind is the provider tag accepted at the API boundary.
type Kind string

const (
	// Cloudinary is the signed-multipart provider.
	Cloudinary Kind = "cloudinary"
	// R2 is the object-storage provider.
	R2 Kind = "r2"
)

// ContentType is sent with every upload.
const ContentType = "image/webp"

var (
	// ErrInvalidProvider is returned for tags other than "cloudinary" and "r2".
	ErrInvalidProvider = errors.New("invalid provider")
	// ErrMissingCredentials is returned when a required credential field is empty.
	ErrMissingCredentials = errors.New("missing provider credentials")
	// ErrAuth classifies failures caused by rejected credentials or signatures.
	ErrAuth = errors.New("provider authentication failed")
	// ErrTransport classifies network failures and unexpected provider responses.
	ErrTransport = errors.New("provider request failed")
	// ErrNoURL is returned when a successful response carries no URL.
	ErrNoURL = errors.New("no URL in response")
)

// ParseKind validates a provider tag.
func ParseKind(tag string) (Kind, error) {
	switch k := Kind(strings.TrimSpace(tag)); k {
	case Cloudinary, R2:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidProvider, tag)
	}
}

// Uploader turns bytes into a publicly retrievable URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

// Credentials is implemented only by SignedCredentials and
// ObjectStorageCredentials.
type Credentials interface {
	Kind() Kind
	validate() error
}

// SignedCredentials authenticate the signed-multipart provider.
type SignedCredentials struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Kind returns Cloudinary.
func (SignedCredentials) Kind() Kind { return Cloudinary }

func (c SignedCredentials) validate() error {
	return requireFields(Cloudinary, map[string]string{
		"cloud_name": c.CloudName,
		"api_key":    c.APIKey,
		"api_secret": c.APISecret,
	})
}

// ObjectStorageCredentials authenticate the S3-compatible provider.
// PublicDomain is the browser-facing base URL objects are served from.
type ObjectStorageCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Endpoint        string
	PublicDomain    string
}

// Kind returns R2.
func (ObjectStorageCredentials) Kind() Kind { return R2 }

func (c ObjectStorageCredentials) validate() error {
	return requireFields(R2, map[string]string{
		"access_key_id":     c.AccessKeyID,
		"secret_access_key": c.SecretAccessKey,
		"bucket":            c.Bucket,
		"endpoint":          c.Endpoint,
		"public_domain":     c.PublicDomain,
	})
}

// CredentialSet carries the credentials of both variants, as read from settings.
type CredentialSet struct {
	Signed        SignedCredentials
	ObjectStorage ObjectStorageCredentials
}

// For returns the credentials matching kind.
func (s CredentialSet) For(kind Kind) (Credentials, error) {
	switch kind {
	case Cloudinary:
		return s.Signed, nil
	case R2:
		return s.ObjectStorage, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidProvider, kind)
	}
}

// Option customises uploaders built by New.
type Option func(*options)

type options struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// WithHTTPClient sets the client used for outbound requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBaseURL overrides the signed-multipart API origin.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithClock overrides the time source used for request signing.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds the uploader for the given credentials.
func New(creds Credentials, opts ...Option) (Uploader, error) {
	if creds == nil {
		return nil, fmt.Errorf("%w: no credentials", ErrInvalidProvider)
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}

	o := options{
		httpClient: &http.Client{},
		baseURL:    defaultCloudinaryBaseURL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch c := creds.(type) {
	case SignedCredentials:
		return newSignedUploader(c, o), nil
	case ObjectStorageCredentials:
		return newObjectStorageUploader(c, o)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidProvider, creds)
	}
}

// Error carries the raw provider detail for a failed upload. It matches
// ErrAuth or ErrTransport with errors.Is.
type Error struct {
	Provider   Kind
	Op         string
	StatusCode int
	Detail     string
	Class      error
	Cause      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Provider, e.Op, e.Detail)
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Class}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func classifyStatus(code int) error {
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return ErrAuth
	}
	return ErrTransport
}

func requireFields(kind Kind, fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s requires %s", ErrMissingCredentials, kind, strings.Join(missing, ", "))
}
