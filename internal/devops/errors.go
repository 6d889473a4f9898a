package devops

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"

	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
	"github.com/olgasafonova/azure-devops-mcp-server/metrics"
	"github.com/olgasafonova/azure-devops-mcp-server/tracing"
)

// Invalidator drops a cached session. *Provider implements it.
type Invalidator interface {
	Invalidate()
}

// wrappedError extracts the SDK's structured error, which the SDK returns
// either by value or by pointer depending on the call path.
func wrappedError(err error) (*azuredevops.WrappedError, bool) {
	if err == nil {
		return nil, false
	}
	var val azuredevops.WrappedError
	if errors.As(err, &val) {
		return &val, true
	}
	var ptr *azuredevops.WrappedError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0 if there is none.
func StatusCode(err error) int {
	if we, ok := wrappedError(err); ok && we.StatusCode != nil {
		return *we.StatusCode
	}
	var api *apperrors.APIError
	if errors.As(err, &api) {
		return api.StatusCode
	}
	return 0
}

// TypeKey returns the server's exception type key (e.g. WikiNotFoundException).
func TypeKey(err error) string {
	if we, ok := wrappedError(err); ok && we.TypeKey != nil {
		return *we.TypeKey
	}
	return ""
}

// ErrorText returns the server's message, falling back to err.Error().
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	if we, ok := wrappedError(err); ok && we.Message != nil && *we.Message != "" {
		return *we.Message
	}
	return err.Error()
}

// WrapAPIError maps a failed remote call onto the error taxonomy. Errors that
// already belong to the taxonomy are returned unchanged. HTTP 401 becomes an
// AuthenticationError and invalidates the session through inv when non-nil.
// action reads as a verb phrase, e.g. "get wikis".
func WrapAPIError(inv Invalidator, action string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsTaxonomy(err) {
		return err
	}

	status := StatusCode(err)
	if status == http.StatusUnauthorized {
		if inv != nil {
			inv.Invalidate()
		}
		return apperrors.NewAuthenticationError("", fmt.Errorf("%s: %w", action, err))
	}
	return apperrors.NewAPIError(fmt.Sprintf("failed to %s: %s", action, ErrorText(err)), status, err)
}

// Track starts a span for one remote call. The returned func records the
// outcome in metrics and on the span, then ends it.
func Track(ctx context.Context, area, action, project string) (context.Context, func(error)) {
	ctx, span := tracing.StartSpan(ctx, "azdo."+area+"."+action)
	tracing.AddDevOpsAttributes(span, area, action, project)
	start := time.Now()

	return ctx, func(err error) {
		metrics.RecordAPICall(area, action, time.Since(start).Seconds(), apperrors.Kind(err))
		tracing.RecordError(span, err)
		span.End()
	}
}
