package embedding

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	embeddingv1 "github.com/valacy/retrieval/gen/embedding/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"
)

const (
	// DefaultMaxAttempts bounds retries of a whole batch on transport failure.
	DefaultMaxAttempts = 3

	// DefaultRetryBackoff is the base delay between attempts; it doubles per
	// attempt.
	DefaultRetryBackoff = 500 * time.Millisecond
)

// ClientConfig holds configuration for the remote embedding client.
type ClientConfig struct {
	// Addr is the host:port of the embedding gRPC service.
	Addr string

	// Token is the static bearer credential attached as call metadata
	// ("authorization"). The service rejects calls without it before any
	// compute.
	Token string

	// SSLDir is the root of the TLS material: <dir>/ca/ca.crt plus
	// <dir>/client/client.{crt,key}. The channel is mutual-TLS secured.
	SSLDir string

	// ServerNameOverride overrides the expected server certificate name,
	// for deployments where the service is dialed by IP.
	ServerNameOverride string

	// Dimension is the expected vector width. Responses with a different
	// width are rejected.
	Dimension int

	// Model is the identifying tag recorded in chunk metadata.
	Model string

	// MaxAttempts bounds whole-batch retries (default 3).
	MaxAttempts int

	// RetryBackoff is the base backoff between attempts (default 500ms).
	RetryBackoff time.Duration
}

// Client is the networked Embedder implementation. Batches are sent in a
// single GetEmbeddings RPC over a mutual-TLS channel with a static bearer
// token; the response matrix is decoded from its Arrow IPC encoding.
type Client struct {
	conn         *grpc.ClientConn
	stub         embeddingv1.EmbeddingServiceClient
	dimension    int
	model        string
	maxAttempts  int
	retryBackoff time.Duration
}

// tokenCredentials attaches the static bearer token to every call.
type tokenCredentials struct {
	token string
}

func (c tokenCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"authorization": c.token}, nil
}

func (c tokenCredentials) RequireTransportSecurity() bool { return true }

// ClientTLSCredentials builds mutual-TLS transport credentials from the
// conventional SSL directory layout.
func ClientTLSCredentials(sslDir, serverNameOverride string) (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(
		filepath.Join(sslDir, "client", "client.crt"),
		filepath.Join(sslDir, "client", "client.key"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load client key pair: %w", err)
	}

	caPEM, err := os.ReadFile(filepath.Join(sslDir, "ca", "ca.crt"))
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		ServerName:   serverNameOverride,
		MinVersion:   tls.VersionTLS12,
	}), nil
}

// NewClient dials the embedding service and returns a ready client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("embedding service address is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("embedding service token is required")
	}

	creds, err := ClientTLSCredentials(cfg.SSLDir, cfg.ServerNameOverride)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(cfg.Addr,
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(tokenCredentials{token: cfg.Token}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial embedding service: %w", err)
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = DefaultRetryBackoff
	}

	return &Client{
		conn:         conn,
		stub:         embeddingv1.NewEmbeddingServiceClient(conn),
		dimension:    cfg.Dimension,
		model:        cfg.Model,
		maxAttempts:  maxAttempts,
		retryBackoff: retryBackoff,
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Embed generates an embedding vector for a single text input.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch sends the whole batch in one RPC. On transport failure the batch
// is retried a bounded number of times; authentication failures are not
// retried.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.retryBackoff << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrTransport, ctx.Err())
			}
		}

		vectors, err := c.getEmbeddings(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		if errors.Is(err, ErrAuthentication) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("embedding batch failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) getEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.stub.GetEmbeddings(ctx, &embeddingv1.EmbeddingQuery{Queries: texts})
	if err != nil {
		st, ok := status.FromError(err)
		if ok && (st.Code() == codes.Unauthenticated || st.Code() == codes.PermissionDenied) {
			return nil, fmt.Errorf("%w: %s", ErrAuthentication, st.Message())
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	vectors, err := DecodeMatrix(resp.GetSerializedEmbeddings())
	if err != nil {
		// Undecodable payloads are treated the same as a broken connection.
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", ErrTransport, len(vectors), len(texts))
	}
	if c.dimension > 0 {
		for i, vec := range vectors {
			if len(vec) != c.dimension {
				return nil, fmt.Errorf("%w: vector %d has dimension %d, want %d", ErrTransport, i, len(vec), c.dimension)
			}
		}
	}

	return vectors, nil
}

// Dimension returns the configured vector width.
func (c *Client) Dimension() int {
	return c.dimension
}

// ModelName returns the embedding model tag.
func (c *Client) ModelName() string {
	return c.model
}

// Ensure Client implements Embedder interface.
var _ Embedder = (*Client)(nil)
