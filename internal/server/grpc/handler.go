package grpc

import (
	"context"
	"errors"

	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/server/models"
	"github.com/jobfind/jobfind/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := s.sessions.Login(ctx, stringField(req, "username"), stringField(req, "password"))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return sessionStruct(session)
}

func (s *GRPCServer) Refresh(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	session, err := s.sessions.Refresh(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return sessionStruct(session)
}

func (s *GRPCServer) Logout(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.sessions.Logout(ctx, principalFrom(ctx)); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.logger.Info(ctx, "Registration request")

	snapshot, err := s.sessions.Register(ctx, services.RegisterRequest{
		Email:    stringField(req, "email"),
		Password: stringField(req, "password"),
		Name:     stringField(req, "name"),
		Role:     common.RoleUser,
		Profile: models.Profile{
			Age:     int(req.GetFields()["age"].GetNumberValue()),
			Gender:  stringField(req, "gender"),
			Address: stringField(req, "address"),
		},
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return structpb.NewStruct(snapshotFields(snapshot))
}

// toStatus maps service errors onto gRPC codes with fixed messages.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrAuthenticationFailed):
		return status.Error(codes.Unauthenticated, "bad credentials")
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "invalid token")
	case errors.Is(err, common.ErrRevokedToken):
		return status.Error(codes.Unauthenticated, "refresh token is no longer valid")
	case errors.Is(err, common.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "authentication required")
	case errors.Is(err, common.ErrMissingToken):
		return status.Error(codes.InvalidArgument, "refresh token is required")
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrDuplicateEmail):
		return status.Error(codes.AlreadyExists, "email already exists")
	case errors.Is(err, common.ErrStoreUnavailable):
		s.logger.Error(ctx, "store unavailable", "error", err)
		return status.Error(codes.Unavailable, "service unavailable")
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func snapshotFields(u models.UserSnapshot) map[string]any {
	return map[string]any{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"role":  u.Role,
	}
}

func sessionStruct(session *services.Session) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"user":          snapshotFields(session.User),
	})
}
