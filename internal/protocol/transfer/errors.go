package transfer

import "errors"

var (
	// ErrInvalidMessage 消息格式不合法
	ErrInvalidMessage = errors.New("transfer: invalid message")

	// ErrContentNotFound 提供方没有请求的内容
	ErrContentNotFound = errors.New("transfer: content not found on provider")

	// ErrRemoteFailure 提供方报告内部错误
	ErrRemoteFailure = errors.New("transfer: provider reported failure")

	// ErrNoAddresses 票据中没有可用地址
	ErrNoAddresses = errors.New("transfer: ticket carries no usable address")
)
