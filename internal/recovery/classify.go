package recovery

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/shared"
)

// KindCarrier is implemented by errors that already know their [models.ErrorKind].
type KindCarrier interface {
	ErrorKind() models.ErrorKind
}

var sentinels = []struct {
	err  error
	kind models.ErrorKind
}{
	{shared.ErrRateLimited, models.ErrorRateLimit},
	{shared.ErrNoResults, models.ErrorNoResults},
	{shared.ErrQueryParse, models.ErrorParsing},
	{shared.ErrTimeout, models.ErrorTimeout},
	{shared.ErrServer, models.ErrorServer},
	{shared.ErrConnection, models.ErrorConnection},
}

// Classify maps err to a kind. It is total: nil and unrecognized errors are [models.ErrorUnknown].
func Classify(err error) models.ErrorKind {
	if err == nil {
		return models.ErrorUnknown
	}

	var ae *models.AnimationError
	if errors.As(err, &ae) {
		return ParseKind(string(ae.Type))
	}

	var carrier KindCarrier
	if errors.As(err, &carrier) {
		return ParseKind(string(carrier.ErrorKind()))
	}

	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrorTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.ErrorTimeout
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return models.ErrorConnection
	}

	return models.ErrorUnknown
}

// Sentinel returns the shared error that classifies as kind, or nil when no sentinel maps to it.
func Sentinel(kind models.ErrorKind) error {
	for _, s := range sentinels {
		if s.kind == kind {
			return s.err
		}
	}
	return nil
}
