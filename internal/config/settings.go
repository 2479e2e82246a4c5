package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/optibridge/service/internal/provider"
)

// DefaultMaxWidth is the width images are clamped to when no setting exists.
const DefaultMaxWidth = 1600

const settingsFileName = "config.json"

const (
	keyCloudinaryCloudName = "cloudinary_cloud_name"
	keyCloudinaryAPIKey    = "cloudinary_api_key"
	keyCloudinaryAPISecret = "cloudinary_api_secret"
	keyR2AccessKeyID       = "r2_access_key_id"
	keyR2SecretAccessKey   = "r2_secret_access_key"
	keyR2BucketName        = "r2_bucket_name"
	keyR2Endpoint          = "r2_endpoint"
	keyR2PublicDomain      = "r2_public_domain"
	keyMaxWidth            = "settings_max_width"
	keyAutoWebP            = "settings_auto_webp"
)

// Settings is the user-editable settings document: provider credentials and
// image pipeline options.
type Settings struct {
	CloudinaryCloudName string `json:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `json:"cloudinary_api_key"`
	CloudinaryAPISecret string `json:"cloudinary_api_secret"`
	R2AccessKeyID       string `json:"r2_access_key_id"`
	R2SecretAccessKey   string `json:"r2_secret_access_key"`
	R2BucketName        string `json:"r2_bucket_name"`
	R2Endpoint          string `json:"r2_endpoint"`
	R2PublicDomain      string `json:"r2_public_domain"`
	MaxWidth            int    `json:"settings_max_width"`
	// AutoWebP is persisted for clients; output is always WebP.
	AutoWebP bool `json:"settings_auto_webp"`
}

// DefaultSettings returns the settings used when nothing has been saved yet.
func DefaultSettings() Settings {
	return Settings{
		MaxWidth: DefaultMaxWidth,
		AutoWebP: true,
	}
}

// Credentials returns both provider credential variants.
func (s Settings) Credentials() provider.CredentialSet {
	return provider.CredentialSet{
		Signed: provider.SignedCredentials{
			CloudName: s.CloudinaryCloudName,
			APIKey:    s.CloudinaryAPIKey,
			APISecret: s.CloudinaryAPISecret,
		},
		ObjectStorage: provider.ObjectStorageCredentials{
			AccessKeyID:     s.R2AccessKeyID,
			SecretAccessKey: s.R2SecretAccessKey,
			Bucket:          s.R2BucketName,
			Endpoint:        s.R2Endpoint,
			PublicDomain:    s.R2PublicDomain,
		},
	}
}

// Masked returns a copy with both provider secrets masked.
func (s Settings) Masked() Settings {
	s.CloudinaryAPISecret = MaskSecret(s.CloudinaryAPISecret)
	s.R2SecretAccessKey = MaskSecret(s.R2SecretAccessKey)
	return s
}

// KeepSecrets returns s with each secret that is empty or still in its
// masked form replaced by the value from stored.
func (s Settings) KeepSecrets(stored Settings) Settings {
	s.CloudinaryAPISecret = keepSecret(s.CloudinaryAPISecret, stored.CloudinaryAPISecret)
	s.R2SecretAccessKey = keepSecret(s.R2SecretAccessKey, stored.R2SecretAccessKey)
	return s
}

func keepSecret(incoming, stored string) string {
	if incoming == "" || incoming == MaskSecret(stored) {
		return stored
	}
	return incoming
}

// MaskSecret hides all but the last four characters of a secret.
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// SettingsStore persists Settings as a JSON file. Load re-reads the file on
// every call so edits made by another process are picked up.
type SettingsStore struct {
	mu   sync.Mutex
	path string
}

// NewSettingsStore creates a store for <dir>/config.json, creating dir if needed.
func NewSettingsStore(dir string) (*SettingsStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create settings directory: %w", err)
	}
	return &SettingsStore{path: filepath.Join(dir, settingsFileName)}, nil
}

// Path returns the settings file location.
func (s *SettingsStore) Path() string {
	return s.path
}

// Load returns the saved settings, or the defaults when no file exists.
func (s *SettingsStore) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := newSettingsViper()
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	return Settings{
		CloudinaryCloudName: v.GetString(keyCloudinaryCloudName),
		CloudinaryAPIKey:    v.GetString(keyCloudinaryAPIKey),
		CloudinaryAPISecret: v.GetString(keyCloudinaryAPISecret),
		R2AccessKeyID:       v.GetString(keyR2AccessKeyID),
		R2SecretAccessKey:   v.GetString(keyR2SecretAccessKey),
		R2BucketName:        v.GetString(keyR2BucketName),
		R2Endpoint:          v.GetString(keyR2Endpoint),
		R2PublicDomain:      v.GetString(keyR2PublicDomain),
		MaxWidth:            v.GetInt(keyMaxWidth),
		AutoWebP:            v.GetBool(keyAutoWebP),
	}, nil
}

// Save writes settings to disk, replacing any previous document.
func (s *SettingsStore) Save(settings Settings) error {
	if settings.MaxWidth <= 0 {
		return fmt.Errorf("settings_max_width must be positive (got %d)", settings.MaxWidth)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := newSettingsViper()
	v.Set(keyCloudinaryCloudName, settings.CloudinaryCloudName)
	v.Set(keyCloudinaryAPIKey, settings.CloudinaryAPIKey)
	v.Set(keyCloudinaryAPISecret, settings.CloudinaryAPISecret)
	v.Set(keyR2AccessKeyID, settings.R2AccessKeyID)
	v.Set(keyR2SecretAccessKey, settings.R2SecretAccessKey)
	v.Set(keyR2BucketName, settings.R2BucketName)
	v.Set(keyR2Endpoint, settings.R2Endpoint)
	v.Set(keyR2PublicDomain, settings.R2PublicDomain)
	v.Set(keyMaxWidth, settings.MaxWidth)
	v.Set(keyAutoWebP, settings.AutoWebP)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func newSettingsViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	d := DefaultSettings()
	v.SetDefault(keyMaxWidth, d.MaxWidth)
	v.SetDefault(keyAutoWebP, d.AutoWebP)
	return v
}
