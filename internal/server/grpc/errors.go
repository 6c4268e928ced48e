package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errorCodes maps service errors to status codes. Order matters:
// ErrMalformedToken also matches ErrUnauthorized.
var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrParams, codes.InvalidArgument},
	{common.ErrMalformedToken, codes.Unauthenticated},
	{common.ErrUnauthorized, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrAccountNotFound, codes.NotFound},
	{common.ErrEmailAlreadyRegistered, codes.AlreadyExists},
	{common.ErrPasswordIncorrect, codes.PermissionDenied},
	{common.ErrInvalidVerificationSession, codes.FailedPrecondition},
	{common.ErrIncorrectVerificationCode, codes.InvalidArgument},
	{common.ErrOAuth, codes.FailedPrecondition},
}

// toStatus converts a service error into a gRPC status error. Unknown
// errors are logged and reported as Internal without details.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			msg := m.err.Error()
			if m.err == common.ErrParams {
				msg = err.Error()
			}
			return status.Error(m.code, msg)
		}
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, "canceled")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
