package beam

import "errors"

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 节点生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("node closed")

	// ────────────────────────────────────────────────────────────────────────
	// 分享相关错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNoPaths 未指定任何分享路径
	ErrNoPaths = errors.New("no paths to serve")

	// ErrDuplicateName 多路径分享时名称冲突
	ErrDuplicateName = errors.New("duplicate entry name")
)
