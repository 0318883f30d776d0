package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/precios-especiales-api/internal/domain"
)

func dependencyErr(op string, err error) error {
	timeout := errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err)
	return &domain.DependencyError{Op: op, Timeout: timeout, Err: err}
}
