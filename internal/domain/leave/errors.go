package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("Leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("Leave request already processed")
	ErrInsufficientBalance          = errors.New("Insufficient leave balance")

	ErrLeavePolicyNotFound = errors.New("Leave policy not found")
	ErrLeavePolicyExists   = errors.New("Leave policy for this leave type already exists")
	ErrLeaveTypeInactive   = errors.New("Leave type is not active")

	ErrLeaveBalanceNotFound = errors.New("Leave balance not found")
)
