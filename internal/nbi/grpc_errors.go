package nbi

import (
	"context"
	"errors"
	"io/fs"

	"github.com/signalsfoundry/hfprop/core"
	"github.com/signalsfoundry/hfprop/internal/loader"
	"github.com/signalsfoundry/hfprop/internal/noise"
	"github.com/signalsfoundry/hfprop/internal/sweep"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToStatusError maps prediction errors onto gRPC status codes. Errors that
// already carry a status pass through unchanged.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, sweep.ErrInvalidPlan),
		errors.Is(err, core.ErrInvalidPath):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, fs.ErrNotExist):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, loader.ErrMalformed),
		errors.Is(err, noise.ErrNoCoefficients):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}
