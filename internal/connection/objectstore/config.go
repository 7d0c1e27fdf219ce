package objectstore

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nucleus/cdc-conductor/internal/connection"
)

const (
	KeyEndpointURL     = "endpointUrl"
	KeyRegion          = "region"
	KeyUseSSL          = "useSSL"
	KeyAccessKeyID     = "accessKeyId"
	KeySecretAccessKey = "secretAccessKey"
	KeyBucket          = "bucket"
)

// Config captures the S3 destination configuration.
type Config struct {
	EndpointURL     string
	Region          string
	UseSSL          bool
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// ParseConfig runs the parameter phase. Snake-case aliases are accepted for
// every key.
func ParseConfig(params map[string]any) (*Config, error) {
	cfg := &Config{
		EndpointURL:     firstString(params, KeyEndpointURL, "endpoint_url", "url"),
		Region:          firstString(params, KeyRegion),
		AccessKeyID:     firstString(params, KeyAccessKeyID, "access_key_id", "accessKeyID"),
		SecretAccessKey: firstString(params, KeySecretAccessKey, "secret_access_key", "secretKey"),
		Bucket:          firstString(params, KeyBucket),
	}

	if cfg.EndpointURL == "" {
		return nil, &connection.ParamError{Field: KeyEndpointURL, Message: "Endpoint URL must be specified"}
	}
	u, err := url.Parse(cfg.EndpointURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &connection.ParamError{Field: KeyEndpointURL, Message: "Endpoint URL must start with http:// or https://"}
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, &connection.ParamError{Field: KeyAccessKeyID, Message: "accessKeyId and secretAccessKey must be specified"}
	}
	if cfg.Bucket == "" {
		return nil, &connection.ParamError{Field: KeyBucket, Message: "Bucket must be specified"}
	}

	key := KeyUseSSL
	if _, ok := params[key]; !ok {
		key = "use_ssl"
	}
	useSSL, err := connection.OptionalBool(params, key, false)
	if err != nil {
		return nil, err
	}
	cfg.UseSSL = useSSL || u.Scheme == "https"
	return cfg, nil
}

// host returns the endpoint without scheme, as minio-go expects.
func (c *Config) host() string {
	if u, err := url.Parse(c.EndpointURL); err == nil && u.Host != "" {
		return u.Host
	}
	return c.EndpointURL
}

func firstString(params map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := params[key]; ok && v != nil {
			switch t := v.(type) {
			case string:
				return strings.TrimSpace(t)
			case fmt.Stringer:
				return strings.TrimSpace(t.String())
			}
		}
	}
	return ""
}
