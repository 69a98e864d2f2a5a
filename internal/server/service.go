package server

import (
	"context"
	"log/slog"

	embeddingv1 "github.com/valacy/retrieval/gen/embedding/v1"
	"github.com/valacy/retrieval/internal/embedding"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// EmbeddingService serves GetEmbeddings over a local embedder. The response
// matrix is serialized as an Arrow IPC stream with one list<float32> column.
type EmbeddingService struct {
	embeddingv1.UnimplementedEmbeddingServiceServer

	embedder embedding.Embedder
	logger   *slog.Logger
}

// NewEmbeddingService creates the gRPC service implementation.
func NewEmbeddingService(embedder embedding.Embedder, logger *slog.Logger) *EmbeddingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingService{
		embedder: embedder,
		logger:   logger,
	}
}

// GetEmbeddings embeds every query in the request and returns the serialized
// matrix. Row order matches query order; an empty request returns an empty
// matrix.
func (s *EmbeddingService) GetEmbeddings(ctx context.Context, req *embeddingv1.EmbeddingQuery) (*embeddingv1.EmbeddingResponse, error) {
	queries := req.GetQueries()

	vectors, err := s.embedder.EmbedBatch(ctx, queries)
	if err != nil {
		s.logger.Error("embedding batch failed", "queries", len(queries), "error", err)
		return nil, status.Errorf(codes.Internal, "failed to embed queries: %v", err)
	}

	payload, err := embedding.EncodeMatrix(vectors)
	if err != nil {
		s.logger.Error("failed to encode embedding matrix", "error", err)
		return nil, status.Errorf(codes.Internal, "failed to encode embeddings: %v", err)
	}

	return &embeddingv1.EmbeddingResponse{SerializedEmbeddings: payload}, nil
}

var _ embeddingv1.EmbeddingServiceServer = (*EmbeddingService)(nil)
