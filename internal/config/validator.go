package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError 配置校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置错误 [%s]: %s", e.Field, e.Message)
}

// ValidationErrors 多个配置校验错误
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors 是否有错误
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator 配置校验器
type Validator struct {
	errors ValidationErrors
}

// NewValidator 创建校验器
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// addError 添加错误
func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// Errors 返回所有错误
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

// Validate 校验配置
func Validate(config *Config) error {
	v := NewValidator()

	v.validateIdentity(&config.Identity)
	v.validateTransport(&config.Transport)
	v.validateBlob(config)
	v.validateTransfer(&config.Transfer)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// validateIdentity 校验身份配置
func (v *Validator) validateIdentity(c *IdentityConfig) {
	switch c.AuthMode {
	case "certificate", "raw":
	case "":
		v.addError("Identity.AuthMode", "认证模式不能为空")
	default:
		v.addError("Identity.AuthMode", fmt.Sprintf("未知的认证模式 %q（可选: certificate, raw）", c.AuthMode))
	}
}

// validateTransport 校验传输配置
func (v *Validator) validateTransport(c *TransportConfig) {
	if c.ListenAddr == "" {
		v.addError("Transport.ListenAddr", "监听地址不能为空")
	} else if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		v.addError("Transport.ListenAddr", fmt.Sprintf("无效的监听地址 %q: %v", c.ListenAddr, err))
	}

	if c.DialTimeout <= 0 {
		v.addError("Transport.DialTimeout", "拨号超时必须大于 0")
	}
	if c.MaxIdleTimeout <= 0 {
		v.addError("Transport.MaxIdleTimeout", "空闲超时必须大于 0")
	}
	if c.MaxIncomingStreams <= 0 {
		v.addError("Transport.MaxIncomingStreams", "入站流数必须大于 0")
	}
}

// validateBlob 校验内容存储配置
func (v *Validator) validateBlob(config *Config) {
	c := &config.Blob
	if !c.InMemory && c.IndexPath == "" && config.DataDir == "" {
		v.addError("Blob.IndexPath", "持久化索引需要 IndexPath 或 DataDir")
	}
	if c.OutboardCacheSize <= 0 {
		v.addError("Blob.OutboardCacheSize", "校验树缓存条目数必须大于 0")
	}
}

// validateTransfer 校验传输协议配置
func (v *Validator) validateTransfer(c *TransferConfig) {
	if c.RequestTimeout <= 0 {
		v.addError("Transfer.RequestTimeout", "请求超时必须大于 0")
	}
	if c.EventBuffer < 0 {
		v.addError("Transfer.EventBuffer", "事件缓冲不能为负")
	}
}
