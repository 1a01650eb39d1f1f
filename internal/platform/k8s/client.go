// Package k8s is a minimal Kubernetes batch/v1 client for submitting
// evaluation jobs from inside a cluster. It speaks to the API server
// directly over HTTPS with the pod's service-account identity; no
// client-go dependency, no watch machinery.
package k8s

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	tokenFile     = "/var/run/secrets/kubernetes.io/serviceaccount/token"
	namespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"
	caFile        = "/var/run/secrets/kubernetes.io/serviceaccount/ca.crt"
)

var (
	ErrNotFound      = errors.New("kubernetes resource not found")
	ErrAlreadyExists = errors.New("kubernetes resource already exists")
	ErrUnauthorized  = errors.New("kubernetes request unauthorized")
	ErrForbidden     = errors.New("kubernetes request forbidden")
)

// APIError carries an API server response that maps to no sentinel.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("kubernetes api error (status=%d)", e.StatusCode)
	}
	return fmt.Sprintf("kubernetes api error (status=%d): %s", e.StatusCode, body)
}

type Client struct {
	baseURL   string
	token     string
	namespace string
	http      *http.Client
}

// NewInClusterClient builds a client from the pod's mounted
// service-account credentials and the KUBERNETES_SERVICE_* environment.
func NewInClusterClient() (*Client, error) {
	token, err := readIdentityFile(tokenFile, "token")
	if err != nil {
		return nil, err
	}
	namespace, err := readIdentityFile(namespaceFile, "namespace")
	if err != nil {
		return nil, err
	}
	caPEM, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("read serviceaccount ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, errors.New("invalid serviceaccount ca bundle")
	}

	baseURL := "https://kubernetes.default.svc"
	if host := strings.TrimSpace(os.Getenv("KUBERNETES_SERVICE_HOST")); host != "" {
		port := strings.TrimSpace(os.Getenv("KUBERNETES_SERVICE_PORT"))
		if port == "" {
			port = "443"
		}
		baseURL = "https://" + host + ":" + port
	}

	return &Client{
		baseURL:   baseURL,
		token:     token,
		namespace: namespace,
		http: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
			},
			Timeout: 15 * time.Second,
		},
	}, nil
}

func readIdentityFile(path, what string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read serviceaccount %s: %w", what, err)
	}
	v := strings.TrimSpace(string(raw))
	if v == "" {
		return "", fmt.Errorf("serviceaccount %s is empty", what)
	}
	return v, nil
}

// Namespace is the namespace of the pod the client runs in.
func (c *Client) Namespace() string {
	return c.namespace
}

// CreateJob posts the Job to the namespace's batch/v1 collection. A 409
// maps to ErrAlreadyExists so callers can treat resubmission as a
// success.
func (c *Client) CreateJob(ctx context.Context, namespace string, job Job) error {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = c.namespace
	}
	job.APIVersion = "batch/v1"
	job.Kind = "Job"
	job.Metadata.Namespace = namespace

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	url := fmt.Sprintf("%s/apis/batch/v1/namespaces/%s/jobs", c.baseURL, namespace)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	return statusError(resp.StatusCode, body)
}

func statusError(code int, body []byte) error {
	switch code {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusConflict:
		return ErrAlreadyExists
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return &APIError{StatusCode: code, Body: string(body)}
	}
}
