// Package s3 builds clients for the bucket that holds a stored stream.
package s3

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

const (
	AccessKeyEnv = "STREAMTOOL_S3_ACCESS_KEY"
	SecretKeyEnv = "STREAMTOOL_S3_SECRET_KEY"

	defaultRegion     = "us-east-1"
	defaultMaxRetries = 5
)

// KeysConfig says where the static access and secret keys live. A file
// takes precedence over an environment variable.
type KeysConfig struct {
	AccessKeyFile string `yaml:"access_key_file,omitempty"`
	SecretKeyFile string `yaml:"secret_key_file,omitempty"`
	AccessKeyEnv  string `yaml:"access_key_env,omitempty"`
	SecretKeyEnv  string `yaml:"secret_key_env,omitempty"`
}

type TLSConfig struct {
	Insecure bool   `yaml:"insecure,omitempty"`
	CAFile   string `yaml:"ca_file,omitempty"`
}

// Config addresses a key prefix inside one bucket.
type Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix,omitempty"`

	Endpoint       string `yaml:"endpoint,omitempty"`
	Region         string `yaml:"region,omitempty"`
	ForcePathStyle bool   `yaml:"force_path_style,omitempty"`
	MaxRetries     int    `yaml:"max_retries,omitempty"`

	Keys KeysConfig `yaml:"keys"`
	TLS  TLSConfig  `yaml:"tls"`
}

func (c *Config) FillDefault() {
	if c.Region == "" {
		c.Region = defaultRegion
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.Keys.AccessKeyFile == "" && c.Keys.AccessKeyEnv == "" {
		c.Keys.AccessKeyEnv = AccessKeyEnv
	}
	if c.Keys.SecretKeyFile == "" && c.Keys.SecretKeyEnv == "" {
		c.Keys.SecretKeyEnv = SecretKeyEnv
	}
	c.Prefix = strings.Trim(c.Prefix, "/")
}

func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("s3 bucket is empty")
	}
	if c.TLS.Insecure && c.TLS.CAFile != "" {
		return fmt.Errorf("s3 tls.insecure and tls.ca_file are mutually exclusive")
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

// keysProvider reads static keys once and caches them for the client lifetime.
type keysProvider struct {
	conf      KeysConfig
	retrieved bool
}

var _ credentials.Provider = (*keysProvider)(nil)

const keysProviderName = "StreamtoolKeysProvider"

func (p *keysProvider) Retrieve() (credentials.Value, error) {
	access, err := readKey(p.conf.AccessKeyFile, p.conf.AccessKeyEnv)
	if err != nil {
		return credentials.Value{ProviderName: keysProviderName}, fmt.Errorf("access key: %w", err)
	}
	secret, err := readKey(p.conf.SecretKeyFile, p.conf.SecretKeyEnv)
	if err != nil {
		return credentials.Value{ProviderName: keysProviderName}, fmt.Errorf("secret key: %w", err)
	}

	p.retrieved = true
	return credentials.Value{
		AccessKeyID:     access,
		SecretAccessKey: secret,
		ProviderName:    keysProviderName,
	}, nil
}

func (p *keysProvider) IsExpired() bool {
	return !p.retrieved
}

func readKey(file, env string) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	case env != "":
		value := os.Getenv(env)
		if value == "" {
			return "", fmt.Errorf("%s is not set", env)
		}
		return value, nil
	default:
		return "", fmt.Errorf("neither file nor environment variable is configured")
	}
}

// newCredentials prefers the configured keys and falls back to the standard
// AWS environment variables.
func newCredentials(conf KeysConfig) *credentials.Credentials {
	return credentials.NewChainCredentials([]credentials.Provider{
		&keysProvider{conf: conf},
		&credentials.EnvProvider{},
	})
}

func newHTTPClient(conf TLSConfig) (*http.Client, error) {
	tlsConf := &tls.Config{InsecureSkipVerify: conf.Insecure}

	if conf.CAFile != "" {
		pem, err := os.ReadFile(conf.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", conf.CAFile)
		}
		tlsConf.RootCAs = pool
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConf
	return &http.Client{Transport: transport}, nil
}

// NewClient fills defaults into c, validates it and returns a client for
// c.Bucket. Credentials are resolved lazily on the first request.
func NewClient(c *Config) (s3iface.S3API, error) {
	c.FillDefault()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	httpClient, err := newHTTPClient(c.TLS)
	if err != nil {
		return nil, err
	}

	awsConf := aws.NewConfig().
		WithCredentials(newCredentials(c.Keys)).
		WithRegion(c.Region).
		WithMaxRetries(c.MaxRetries).
		WithS3ForcePathStyle(c.ForcePathStyle).
		WithHTTPClient(httpClient)
	if c.Endpoint != "" {
		awsConf = awsConf.WithEndpoint(c.Endpoint)
	}

	sess, err := session.NewSession(awsConf)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}
	return s3.New(sess), nil
}
