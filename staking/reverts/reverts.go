// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind classifies revert errors for callers deciding how to react.
type Kind uint8

const (
	// Precondition marks errors recoverable by the caller correcting input.
	Precondition Kind = iota
	// StateConflict marks errors where the caller must wait or choose
	// different parameters.
	StateConflict
	// Arithmetic marks overflow and division edge cases. These signal a
	// configuration or scale bug and are never clamped.
	Arithmetic
	// ExternalDependency marks collaborator failures surfaced verbatim.
	ExternalDependency
)

// ErrRevert is a business error that aborts the whole operation.
// Any state mutated by the failed operation is rolled back by the caller.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Kind returns the error classification.
func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// IsRevertErr reports whether err is (or wraps) a revert error.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf extracts the classification of a wrapped revert error.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind, true
	}
	return 0, false
}

var (
	ErrAlreadyRegistered = New(Precondition, "address already controls a validator")
	ErrUnknownValidator  = New(Precondition, "validator does not exist")
	ErrZeroAmount        = New(Precondition, "amount must be greater than 0")
	ErrDuplicateRequest  = New(Precondition, "unstaking request already exists")
	ErrUnknownRequest    = New(Precondition, "unstaking request does not exist")
	ErrAllowanceTooLow   = New(Precondition, "transferable balance is below amount")
	ErrAccessDenied      = New(Precondition, "caller is not the owner")

	ErrAlreadyInactive         = New(StateConflict, "validator is already inactive")
	ErrValidatorInactive       = New(StateConflict, "validator is not active")
	ErrStakeBelowMinimum       = New(StateConflict, "validator stake is below the minimum")
	ErrDelegationLimitExceeded = New(StateConflict, "delegated stake exceeds the allowed ratio")
	ErrInsufficientStake       = New(StateConflict, "insufficient staked balance")
	ErrNotWithdrawable         = New(StateConflict, "request lock period has not expired")
	ErrNoRewardOwed            = New(StateConflict, "no reward owed")
	ErrClaimRejected           = New(StateConflict, "reward claim rejected while jailed")
	ErrClockBackwards          = New(StateConflict, "clock moved backwards")

	ErrArithmeticOverflow = New(Arithmetic, "arithmetic overflow")

	ErrInsufficientRewardPool = New(ExternalDependency, "reward pool cannot cover the claim")
	ErrAssetTransferFailed    = New(ExternalDependency, "asset transfer failed")
)
