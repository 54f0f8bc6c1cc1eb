package providers

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// errors
var (
	ErrNotFound      = errors.New("not found")
	ErrBadStatus     = errors.New("unexpected status code")
	ErrInvalidURL    = errors.New("invalid url")
	ErrTooBig        = errors.New("response body too big")
	ErrNoDataSource  = errors.New("data source is not configured")
)

const maxBodySize = 4 * 1024 * 1024

// DataSource - connection settings of one external provider
type DataSource struct {
	URL     string `yaml:"url" validate:"required,url"`
	Key     string `yaml:"key"`
	Timeout uint64 `yaml:"timeout" validate:"omitempty,min=1"`
}

// Client - HTTP client shared by all adapters
type Client struct {
	http *http.Client
}

// NewClient -
func NewClient(timeout time.Duration) *Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxConnsPerHost = 100
	t.MaxIdleConnsPerHost = 100

	if timeout == 0 {
		timeout = time.Second * 10
	}

	return &Client{
		http: &http.Client{
			Transport: t,
			Timeout:   timeout,
		},
	}
}

// GetJSON - performs one GET round trip and decodes the JSON body into
// output. A 404 is reported as ErrNotFound so adapters can map it to
// NoData.
func (c *Client) GetJSON(ctx context.Context, link string, headers map[string]string, output any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return errors.Wrapf(ErrBadStatus, "%d", resp.StatusCode)
	}

	return json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(output)
}

// ValidateURL - rejects links pointing at loopback or private subnets
// before any request is made with them.
func ValidateURL(link *url.URL) error {
	host := link.Host
	if strings.Contains(host, ":") {
		newHost, _, err := net.SplitHostPort(link.Host)
		if err != nil {
			return err
		}
		host = newHost
	}
	if host == "localhost" || host == "127.0.0.1" {
		return errors.Wrapf(ErrInvalidURL, "invalid host: %s", host)
	}

	for _, mask := range []string{
		"10.0.0.0/8",
		"100.64.0.0/10",
		"169.254.0.0/16",
		"172.16.0.0/12",
		"192.0.0.0/24",
		"192.0.2.0/24",
		"192.168.0.0/16",
		"198.18.0.0/15",
		"198.51.100.0/24",
		"203.0.113.0/24",
		"240.0.0.0/4",
	} {
		_, cidr, err := net.ParseCIDR(mask)
		if err != nil {
			return err
		}

		ip := net.ParseIP(host)
		if ip != nil && cidr.Contains(ip) {
			return errors.Wrapf(ErrInvalidURL, "restricted subnet: %s", mask)
		}
	}
	return nil
}
