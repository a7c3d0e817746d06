// Package grpc exposes the session operations over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/jobfind/jobfind/internal/logging"
	"github.com/jobfind/jobfind/internal/server/models"
	"github.com/jobfind/jobfind/internal/server/services"
	"google.golang.org/grpc"
)

// SessionManager is the part of services.SessionService served here.
type SessionManager interface {
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*services.Session, error)
	Logout(ctx context.Context, email string) error
	Register(ctx context.Context, req services.RegisterRequest) (models.UserSnapshot, error)
}

// TokenVerifier checks access tokens carried in request metadata and
// returns the subject email.
type TokenVerifier interface {
	GetSubjectFromToken(token string) (string, error)
}

type GRPCServer struct {
	address  string
	sessions SessionManager
	tokens   TokenVerifier
	logger   logging.Logger
}

var _ SessionServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(address string, l logging.Logger, sessions SessionManager, tokens TokenVerifier) *GRPCServer {
	return &GRPCServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		sessions: sessions,
		tokens:   tokens,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv.RegisterService(&SessionServiceDesc, s)

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())
	return srv.Serve(lis)
}
