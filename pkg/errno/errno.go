package errno

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类，决定 HTTP 状态码与调用方的处理方式
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindEligibility
	KindIntegrity
	KindCollaborator
	KindAuth
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindEligibility:
		return "eligibility"
	case KindIntegrity:
		return "integrity"
	case KindCollaborator:
		return "collaborator"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
	Kind    Kind
}

func (e Errno) Error() string {
	return e.Message
}

// Is 按错误码比较，WithMessage 生成的副本仍然匹配原始错误
func (e Errno) Is(target error) bool {
	var t Errno
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy carrying a more specific message.
func (e Errno) WithMessage(msg string) Errno {
	e.Message = msg
	return e
}

// Withf is WithMessage with formatting.
func (e Errno) Withf(format string, args ...interface{}) Errno {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var e Errno
	if errors.As(err, &e) {
		return e.Code, e.Message
	}
	var pe *Errno
	if errors.As(err, &pe) && pe != nil {
		return pe.Code, pe.Message
	}
	return InternalServerError.Code, err.Error()
}

// KindOf returns the category of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e Errno
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code written by the response envelope.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindEligibility:
		return http.StatusUnprocessableEntity
	case KindIntegrity:
		return http.StatusConflict
	case KindCollaborator:
		return http.StatusBadGateway
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error", Kind: KindInternal}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct", Kind: KindValidation}
	ErrTokenInvalid     = Errno{Code: 10003, Message: "Token invalid", Kind: KindAuth}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error", Kind: KindInternal}
	ErrForbidden        = Errno{Code: 10005, Message: "Permission denied", Kind: KindForbidden}
	ErrTooManyRequests  = Errno{Code: 10006, Message: "Too many requests", Kind: KindEligibility}
)

// Validation Errors (201xx)
var (
	ErrAccountNotFound    = Errno{Code: 20101, Message: "Account not found", Kind: KindNotFound}
	ErrCreatorNotFound    = Errno{Code: 20102, Message: "Creator not found", Kind: KindNotFound}
	ErrGiftNotFound       = Errno{Code: 20103, Message: "Gift not found", Kind: KindNotFound}
	ErrWithdrawalNotFound = Errno{Code: 20104, Message: "Withdrawal not found", Kind: KindNotFound}
	ErrInvalidAmount      = Errno{Code: 20105, Message: "Amount must be a positive integer", Kind: KindValidation}
	ErrInvalidHandle      = Errno{Code: 20106, Message: "Handle must not be empty", Kind: KindValidation}
	ErrInvalidDecision    = Errno{Code: 20107, Message: "Unknown decision", Kind: KindValidation}
	ErrInvalidStatus      = Errno{Code: 20108, Message: "Unknown account status", Kind: KindValidation}
	ErrInvalidTarget      = Errno{Code: 20109, Message: "Operation does not apply to this account", Kind: KindValidation}
)

// Eligibility Errors (202xx)
var (
	ErrAccountSuspended       = Errno{Code: 20201, Message: "Account is suspended", Kind: KindEligibility}
	ErrSenderRole             = Errno{Code: 20202, Message: "Only end-users and admins can send gifts", Kind: KindEligibility}
	ErrCreatorNotVerified     = Errno{Code: 20203, Message: "Creator is not verified", Kind: KindEligibility}
	ErrCreatorSuspended       = Errno{Code: 20204, Message: "Creator is suspended", Kind: KindEligibility}
	ErrSpendingLimitExceeded  = Errno{Code: 20205, Message: "Gift price exceeds spending limit", Kind: KindEligibility}
	ErrInsufficientFunds      = Errno{Code: 20206, Message: "Insufficient funds", Kind: KindEligibility}
	ErrWithdrawalRiskBlocked  = Errno{Code: 20207, Message: "Withdrawal blocked by risk assessment", Kind: KindEligibility}
	ErrAlreadyVerified        = Errno{Code: 20208, Message: "Creator is already verified", Kind: KindEligibility}
	ErrVerificationPending    = Errno{Code: 20209, Message: "Verification is already pending review", Kind: KindEligibility}
	ErrVerificationNotPending = Errno{Code: 20210, Message: "Creator has no pending verification", Kind: KindEligibility}
	ErrNotAdmin               = Errno{Code: 20211, Message: "Acting account is not an active admin", Kind: KindForbidden}
)

// Integrity Errors (203xx) 正常流程下不可达，出现即说明状态不一致
var (
	ErrInconsistentState      = Errno{Code: 20301, Message: "inconsistent state", Kind: KindIntegrity}
	ErrWithdrawalDecided      = Errno{Code: 20302, Message: "inconsistent state: withdrawal already decided", Kind: KindIntegrity}
	ErrNegativeBalance        = Errno{Code: 20303, Message: "inconsistent state: balance would become negative", Kind: KindIntegrity}
	ErrAuditChainBroken       = Errno{Code: 20304, Message: "inconsistent state: audit chain broken", Kind: KindIntegrity}
	ErrTransactionSplitBroken = Errno{Code: 20305, Message: "inconsistent state: transaction split mismatch", Kind: KindIntegrity}
)

// Collaborator Errors (204xx)
var (
	ErrAdvisorUnavailable = Errno{Code: 20401, Message: "Risk advisor unavailable", Kind: KindCollaborator}
	ErrAdvisorResponse    = Errno{Code: 20402, Message: "Risk advisor returned an unusable response", Kind: KindCollaborator}
)
