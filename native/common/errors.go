package common

import (
	"errors"
	"fmt"
)

// Machine-readable tags reported to clients for rejected calls.
const (
	CodeUnauthorized             = "unauthorized"
	CodePendingOwnerMissing      = "pending_owner_missing"
	CodeAlreadyClaimed           = "already_claimed"
	CodeDoMoreTasks              = "do_more_tasks"
	CodeInsufficientFee          = "insufficient_fee"
	CodeNotEnoughDeposit         = "not_enough_deposit"
	CodeKycFailed                = "kyc_failed"
	CodeTouFailed                = "tou_failed"
	CodeTouAlreadyAccepted       = "tou_already_accepted"
	CodeAlreadyJoined            = "already_joined"
	CodeIdoPaused                = "ido_paused"
	CodeIdoClosed                = "ido_closed"
	CodeMultipleBonds            = "cannot_stake_in_more_than_one_contract"
	CodeTooManyDelegates         = "too_many_delegates"
	CodeAddressAlreadyRegistered = "address_already_registered"
	CodeAddressNotRegistered     = "address_not_registered"
	CodeEndDateInThePast         = "end_date_in_the_past"
	CodeSnapshotTimeFromPast     = "snapshot_time_from_past"
	CodeInvalidAddress           = "invalid_address"
	CodeInvalidMessage           = "invalid_message"
	CodeBalanceIsEmpty           = "balance_is_empty"
	CodeRecordNotFound           = "record_not_found"
	CodeAmountOutOfRange         = "amount_out_of_range"
	CodeDelegateQuery            = "delegate_query_failed"
	CodeInsufficientFunds        = "insufficient_funds"
	CodeUnknownContract          = "unknown_contract"
	CodeStorage                  = "storage"
	CodeInternal                 = "internal"
)

// CodedError pairs an error with the tag clients use to tell failures apart.
type CodedError struct {
	Code string
	Err  error
}

// NewError returns a coded error with the given message. Package level
// sentinels are built with it so errors.Is keeps working across wrapping.
func NewError(code, msg string) *CodedError {
	return &CodedError{Code: code, Err: errors.New(msg)}
}

func (e *CodedError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *CodedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Code extracts the machine-readable tag from err. Untagged errors report
// CodeInternal.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var coded *CodedError
	if errors.As(err, &coded) && coded.Code != "" {
		return coded.Code
	}
	return CodeInternal
}

// StorageError tags a persistence or encoding failure.
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	return &CodedError{Code: CodeStorage, Err: err}
}

// InvalidAddress tags an address that failed to parse.
func InvalidAddress(err error) error {
	if err == nil {
		return nil
	}
	return &CodedError{Code: CodeInvalidAddress, Err: err}
}

// InvalidMessage tags a malformed request.
func InvalidMessage(format string, args ...interface{}) error {
	return &CodedError{Code: CodeInvalidMessage, Err: fmt.Errorf(format, args...)}
}

var (
	ErrUnauthorized        = NewError(CodeUnauthorized, "unauthorized")
	ErrPendingOwnerMissing = NewError(CodePendingOwnerMissing, "pending owner missing")
	ErrTooManyDelegates    = NewError(CodeTooManyDelegates, "too many delegate contracts")
	ErrInsufficientFee     = NewError(CodeInsufficientFee, "insufficient fee")
	ErrAmountOutOfRange    = NewError(CodeAmountOutOfRange, "amount out of range")
	ErrBalanceIsEmpty      = NewError(CodeBalanceIsEmpty, "balance is empty")
)
