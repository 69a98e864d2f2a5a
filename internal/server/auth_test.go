package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func callWithToken(t *testing.T, interceptor *TokenInterceptor, md metadata.MD, method string) (bool, error) {
	t.Helper()

	ctx := context.Background()
	if md != nil {
		ctx = metadata.NewIncomingContext(ctx, md)
	}

	handled := false
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		handled = true
		return "ok", nil
	}

	_, err := interceptor.UnaryInterceptor()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, handler)
	return handled, err
}

func TestTokenInterceptor_ValidToken(t *testing.T) {
	interceptor := NewTokenInterceptor("secret")

	handled, err := callWithToken(t, interceptor,
		metadata.Pairs(AuthorizationHeader, "secret"),
		"/embedding.v1.EmbeddingService/GetEmbeddings")

	require.NoError(t, err)
	assert.True(t, handled)
}

func TestTokenInterceptor_InvalidToken(t *testing.T) {
	interceptor := NewTokenInterceptor("secret")

	handled, err := callWithToken(t, interceptor,
		metadata.Pairs(AuthorizationHeader, "wrong"),
		"/embedding.v1.EmbeddingService/GetEmbeddings")

	require.Error(t, err)
	assert.False(t, handled, "handler must not run on rejected calls")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestTokenInterceptor_MissingToken(t *testing.T) {
	interceptor := NewTokenInterceptor("secret")

	handled, err := callWithToken(t, interceptor,
		metadata.Pairs("other-header", "value"),
		"/embedding.v1.EmbeddingService/GetEmbeddings")

	require.Error(t, err)
	assert.False(t, handled)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestTokenInterceptor_MissingMetadata(t *testing.T) {
	interceptor := NewTokenInterceptor("secret")

	handled, err := callWithToken(t, interceptor, nil,
		"/embedding.v1.EmbeddingService/GetEmbeddings")

	require.Error(t, err)
	assert.False(t, handled)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestTokenInterceptor_UnconfiguredToken(t *testing.T) {
	interceptor := NewTokenInterceptor("")

	handled, err := callWithToken(t, interceptor,
		metadata.Pairs(AuthorizationHeader, "anything"),
		"/embedding.v1.EmbeddingService/GetEmbeddings")

	require.Error(t, err)
	assert.False(t, handled)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestTokenInterceptor_SkipsHealthCheck(t *testing.T) {
	interceptor := NewTokenInterceptor("secret")

	handled, err := callWithToken(t, interceptor, nil,
		"/grpc.health.v1.Health/Check")

	require.NoError(t, err)
	assert.True(t, handled)
}
