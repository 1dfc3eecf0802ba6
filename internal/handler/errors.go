// internal/handler/errors.go
package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SyedDaiam9101/classifier-service/internal/classifier"
)

// writeError renders err as the JSON error body for its class:
// validation failures as a detail list, everything else as a detail string.
func writeError(c *gin.Context, err error) {
	var ve *classifier.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []*classifier.ValidationError{ve}})
	case errors.Is(err, classifier.ErrEngineUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": err.Error()})
	case classifier.IsInference(err):
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal Server Error"})
	}
}

// grpcError maps service errors to gRPC status errors
func grpcError(err error) error {
	if err == nil {
		return nil
	}

	var ve *classifier.ValidationError
	switch {
	case errors.As(err, &ve):
		return invalidArgumentError(ve)
	case errors.Is(err, classifier.ErrEngineUnavailable):
		return status.Errorf(codes.FailedPrecondition, "inference engine not initialized")
	case classifier.IsInference(err):
		return status.Error(codes.Internal, err.Error())
	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}

// invalidArgumentError creates an InvalidArgument gRPC error carrying the
// offending field as BadRequest details.
func invalidArgumentError(ve *classifier.ValidationError) error {
	st := status.New(codes.InvalidArgument, ve.Error())
	detailed, err := st.WithDetails(&errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{{
			Field:       fieldPath(ve.Loc),
			Description: fmt.Sprintf("%s: %s", ve.Type, ve.Msg),
		}},
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// fieldPath renders a location such as ["body", "features", 1] as
// "features[1]".
func fieldPath(loc []interface{}) string {
	path := ""
	for _, part := range loc {
		switch p := part.(type) {
		case int:
			path += fmt.Sprintf("[%d]", p)
		case string:
			if p == "body" {
				continue
			}
			if path != "" {
				path += "."
			}
			path += p
		}
	}
	return path
}
