package helpers

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewESClient creates an Elasticsearch client tuned for the small documents
// this service indexes: short timeouts, request compression, and a couple of
// retries on gateway errors. Basic auth is optional.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	if len(addrs) == 0 {
		return nil, errors.New("no elasticsearch addresses configured")
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: 5 * time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
	}

	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:           addrs,
		Username:            username,
		Password:            password,
		CompressRequestBody: true,
		RetryOnStatus:       []int{502, 503, 504},
		MaxRetries:          2,
		Transport:           transport,
	})
}
