package server

import (
	"context"
	"crypto/subtle"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AuthorizationHeader is the metadata key carrying the static bearer token.
const AuthorizationHeader = "authorization"

// TokenInterceptor validates the static bearer token on every call before any
// handler runs. Rejection happens before any embedding compute.
type TokenInterceptor struct {
	token       string
	skipMethods map[string]bool
}

// NewTokenInterceptor creates a token interceptor.
func NewTokenInterceptor(token string) *TokenInterceptor {
	return &TokenInterceptor{
		token: token,
		skipMethods: map[string]bool{
			"/grpc.health.v1.Health/Check": true,
			"/grpc.health.v1.Health/Watch": true,
		},
	}
}

// WithSkipMethods adds methods to skip authentication.
func (i *TokenInterceptor) WithSkipMethods(methods ...string) *TokenInterceptor {
	for _, method := range methods {
		i.skipMethods[method] = true
	}
	return i
}

// UnaryInterceptor returns a gRPC unary interceptor validating the token.
func (i *TokenInterceptor) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if i.skipMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		if err := i.validate(ctx); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamInterceptor returns a gRPC stream interceptor validating the token.
func (i *TokenInterceptor) StreamInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.skipMethods[info.FullMethod] {
			return handler(srv, ss)
		}
		if err := i.validate(ss.Context()); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

func (i *TokenInterceptor) validate(ctx context.Context) error {
	if i.token == "" {
		return status.Error(codes.PermissionDenied, "service token not configured")
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}

	values := md.Get(AuthorizationHeader)
	if len(values) == 0 {
		return status.Error(codes.Unauthenticated, "missing token")
	}

	token := strings.TrimSpace(values[0])
	if subtle.ConstantTimeCompare([]byte(token), []byte(i.token)) != 1 {
		return status.Error(codes.Unauthenticated, "invalid token")
	}

	return nil
}
