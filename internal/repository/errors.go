package repository

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"studyhub/internal/model"
)

// MongoDB server error codes meaning the caller lacks rights.
var permissionCodes = []int{
	13,   // Unauthorized
	18,   // AuthenticationFailed
	8000, // AtlasError (unauthorized on Atlas)
}

// classify tags authorization failures with model.ErrPermissionDenied so callers can
// tell them apart from generic store failures.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) {
		for _, code := range permissionCodes {
			if srvErr.HasErrorCode(code) {
				return fmt.Errorf("%w: %v", model.ErrPermissionDenied, err)
			}
		}
	}
	return err
}
