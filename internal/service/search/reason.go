package search

import (
	"errors"
	"fmt"

	"github.com/heartmarshall/myenglish-lookup/internal/domain"
)

// Messages shown to the user for a failed search.
const (
	ReasonNetwork = "Couldn't reach server. Check your internet connection."
	ReasonGeneric = "Oops! Something went wrong."
)

// Reason returns the user-facing message for a fetch failure.
func Reason(query string, err error) string {
	switch {
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return ReasonNetwork
	case errors.Is(err, domain.ErrWordNotFound):
		return fmt.Sprintf("No definitions found for %q.", query)
	default:
		return ReasonGeneric
	}
}

// failureKind is the metric label for err.
func failureKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return "network"
	case errors.Is(err, domain.ErrWordNotFound):
		return "not_found"
	default:
		return "service"
	}
}
