package actions

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrAllStrategiesFailed is returned when no launch strategy succeeded.
var ErrAllStrategiesFailed = errors.New("all launch strategies failed")

// LaunchStrategy is one way of opening an external app for a request, e.g. a
// preferred player, then a generic intent, then a web fallback.
type LaunchStrategy struct {
	Name   string
	Launch func(ctx context.Context, query string) error
}

// TryInOrder attempts each strategy in registration order and returns the
// name of the first that succeeded.
func TryInOrder(ctx context.Context, strategies []LaunchStrategy, query string) (string, error) {
	var lastErr error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		err := s.Launch(ctx, query)
		if err == nil {
			return s.Name, nil
		}
		lastErr = err
		log.Printf("launch strategy %s failed: %v", s.Name, err)
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrAllStrategiesFailed, lastErr)
	}
	return "", ErrAllStrategiesFailed
}
