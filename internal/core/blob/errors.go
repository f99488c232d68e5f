package blob

import "errors"

var (
	// ErrNotFound 内容不存在
	ErrNotFound = errors.New("blob: not found")

	// ErrStoreClosed 索引已关闭
	ErrStoreClosed = errors.New("blob: store closed")

	// ErrNotRegularFile 路径不是普通文件
	ErrNotRegularFile = errors.New("blob: not a regular file")

	// ErrNotDirectory 路径不是目录
	ErrNotDirectory = errors.New("blob: not a directory")

	// ErrEmptyDir 目录中没有可添加的文件
	ErrEmptyDir = errors.New("blob: directory contains no files")

	// ErrInvalidEntry 条目记录损坏
	ErrInvalidEntry = errors.New("blob: invalid entry record")

	// ErrInvalidManifest 清单记录损坏
	ErrInvalidManifest = errors.New("blob: invalid manifest record")

	// ErrVerificationFailed 数据未通过校验树验证
	ErrVerificationFailed = errors.New("blob: verification failed")
)
