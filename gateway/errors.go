package gateway

import (
	"errors"

	"github.com/rony4d/lp-gateway/inter/ientry"
)

var (
	// configuration
	ErrNotEnoughRouters   = errors.New("not enough routers for domain")
	ErrDomainNotSupported = errors.New("domain not supported")

	// authorization
	ErrUnknownRouter                   = ientry.ErrUnknownRouter
	ErrMessageExpectedFromFirstRouter  = ientry.ErrMessageExpectedFromFirstRouter
	ErrProofNotExpectedFromFirstRouter = ientry.ErrProofNotExpectedFromFirstRouter

	// merge
	ErrMismatchedEntryVariant   = ientry.ErrMismatchedEntryVariant
	ErrExpectedMessageType      = ientry.ErrExpectedMessageType
	ErrExpectedMessageProofType = ientry.ErrExpectedMessageProofType

	// arithmetic
	ErrArithmeticOverflow  = ientry.ErrArithmeticOverflow
	ErrArithmeticUnderflow = ientry.ErrArithmeticUnderflow

	// administration
	ErrTooManyRouters  = errors.New("too many routers")
	ErrDuplicateRouter = errors.New("duplicate router")

	// allowlist
	ErrInstanceAlreadyAdded = errors.New("instance already added")
	ErrUnknownInstance      = errors.New("unknown instance")

	// receive edge
	ErrMessageTooLarge       = errors.New("message exceeds maximum incoming size")
	ErrMessageDecodingFailed = errors.New("message decoding failed")

	// batching
	ErrMessagePackingNotStarted     = errors.New("message packing not started")
	ErrMessagePackingAlreadyStarted = errors.New("message packing already started")

	ErrUnknownGatewayMessageKind = errors.New("unknown gateway message kind")

	// ErrPendingEntryNotFound is raised as a panic: an entry seen during the
	// quorum check disappeared before cleanup.
	ErrPendingEntryNotFound = errors.New("pending inbound entry not found")
)

// rejectReason is the metrics label of an inbound failure.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrNotEnoughRouters):
		return "not_enough_routers"
	case errors.Is(err, ErrDomainNotSupported):
		return "domain_not_supported"
	case errors.Is(err, ErrUnknownRouter):
		return "unknown_router"
	case errors.Is(err, ErrMessageExpectedFromFirstRouter):
		return "message_not_from_first_router"
	case errors.Is(err, ErrProofNotExpectedFromFirstRouter):
		return "proof_from_first_router"
	case errors.Is(err, ErrMismatchedEntryVariant):
		return "mismatched_entry"
	case errors.Is(err, ErrArithmeticOverflow), errors.Is(err, ErrArithmeticUnderflow):
		return "arithmetic"
	default:
		return "handler"
	}
}
