package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// objectStorageRegion is required by the S3 signer; R2 ignores its value.
const objectStorageRegion = "auto"

const defaultExtension = "webp"

// ObjectStorageUploader puts images into an S3-compatible bucket and returns
// a URL under the configured public domain. The store's own endpoint is
// never exposed to clients.
type ObjectStorageUploader struct {
	client       *minio.Client
	bucket       string
	publicDomain string
}

func newObjectStorageUploader(c ObjectStorageCredentials, o options) (*ObjectStorageUploader, error) {
	host, secure, err := splitEndpoint(c.Endpoint)
	if err != nil {
		return nil, err
	}

	mo := &minio.Options{
		Creds:        credentials.NewStaticV4(c.AccessKeyID, c.SecretAccessKey, ""),
		Secure:       secure,
		Region:       objectStorageRegion,
		BucketLookup: minio.BucketLookupPath,
		MaxRetries:   1,
	}
	if o.httpClient != nil && o.httpClient.Transport != nil {
		mo.Transport = o.httpClient.Transport
	}

	client, err := minio.New(host, mo)
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}

	return &ObjectStorageUploader{
		client:       client,
		bucket:       c.Bucket,
		publicDomain: strings.TrimRight(c.PublicDomain, "/"),
	}, nil
}

// Upload stores data under a fresh "<uuid>.<ext>" key and returns its public URL.
func (u *ObjectStorageUploader) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	key := ObjectKey(uuid.NewString(), filename)

	_, err := u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: ContentType,
	})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		detail := resp.Message
		if detail == "" {
			detail = err.Error()
		}
		return "", &Error{
			Provider:   R2,
			Op:         "put object",
			StatusCode: resp.StatusCode,
			Detail:     detail,
			Class:      classifyObjectStorageError(resp),
			Cause:      err,
		}
	}

	return u.PublicURL(key), nil
}

// PublicURL returns the browser-accessible URL for key.
func (u *ObjectStorageUploader) PublicURL(key string) string {
	return u.publicDomain + "/" + key
}

// ObjectKey pairs id with the extension of filename, falling back to "webp"
// when filename has none.
func ObjectKey(id, filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = defaultExtension
	}
	return id + "." + ext
}

func classifyObjectStorageError(resp minio.ErrorResponse) error {
	switch resp.Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return ErrAuth
	}
	return classifyStatus(resp.StatusCode)
}

// splitEndpoint accepts "https://host", "http://host:port" or a bare host.
// Bare hosts default to TLS.
func splitEndpoint(endpoint string) (string, bool, error) {
	endpoint = strings.TrimSpace(endpoint)
	if !strings.Contains(endpoint, "://") {
		return strings.TrimRight(endpoint, "/"), true, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse object storage endpoint: %w", err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("object storage endpoint %q has no host", endpoint)
	}
	return u.Host, u.Scheme == "https", nil
}

var _ Uploader = (*ObjectStorageUploader)(nil)
