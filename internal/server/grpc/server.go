// Package grpc exposes the SessionService over gRPC together with the
// standard health service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Sessions is the part of services.SessionService used by the transport.
type Sessions interface {
	AuthConfig() []services.AuthConfigItem
	EmailSignup(ctx context.Context, email, password string) (*models.VerificationSession, error)
	EmailLogin(ctx context.Context, email, password string) (*models.TokenPair, error)
	CreateVerification(ctx context.Context, email, purpose, password string) (*models.VerificationSession, error)
	ResendVerification(ctx context.Context, sessionID string) error
	CheckVerification(ctx context.Context, sessionID, code string) (*services.CheckResult, error)
	OAuthLogin(ctx context.Context, p services.OAuthProfile) (*models.User, *models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, uid string) error
	ParseAccessToken(token string) (*auth.Claims, error)
}

type GRPCServer struct {
	address      string
	sessions     Sessions
	logger       logging.Logger
	callerSecret string
}

// Option configures a GRPCServer.
type Option func(*GRPCServer)

// WithCallerSecret sets the secret trusted callers present in the
// common.CallerSecretHeaderName metadata key. Without it every trusted-caller
// method is rejected.
func WithCallerSecret(secret string) Option {
	return func(s *GRPCServer) { s.callerSecret = secret }
}

func NewGRPCServer(a string, l logging.Logger, ss Sessions, opts ...Option) *GRPCServer {
	s := &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		sessions: ss,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// newServer builds the grpc.Server with every service registered.
func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.callerSecretInterceptor, s.accessTokenInterceptor))

	api.RegisterAuthServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is canceled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
