package grpc

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// authenticated lists the methods that require an access token.
var authenticated = map[string]bool{
	api.MethodLogout: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if authenticated[info.FullMethod] {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		claims, err := s.sessions.ParseAccessToken(accessToken)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = context.WithValue(ctx, claimsKey, claims)

	}

	return handler(ctx, req)
}

// trusted lists the methods reserved for internal callers holding the caller
// secret. OAuthLogin takes the provider profile on trust.
var trusted = map[string]bool{
	api.MethodOAuthLogin: true,
}

func (s *GRPCServer) callerSecretInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if trusted[info.FullMethod] && !s.trustedCaller(ctx) {
		s.logger.Warn(ctx, "untrusted caller rejected", "method", info.FullMethod)
		return nil, status.Error(codes.Unauthenticated, "untrusted caller")
	}
	return handler(ctx, req)
}

func (s *GRPCServer) trustedCaller(ctx context.Context) bool {
	if s.callerSecret == "" {
		return false
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return false
	}
	values := md.Get(common.CallerSecretHeaderName)
	if len(values) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(values[0]), []byte(s.callerSecret)) == 1
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}

func claimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}
