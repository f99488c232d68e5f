package identity

import (
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dep2p/go-beam/pkg/lib/crypto"
	"github.com/dep2p/go-beam/pkg/lib/log"
)

var logger = log.Logger("identity")

// pemTypePrivate 私钥 PEM 块类型
const pemTypePrivate = "ED25519 PRIVATE KEY"

// ============================================================================
//                              私钥持久化
// ============================================================================

// SavePrivateKeyPEM 保存身份私钥到 PEM 文件
//
// 使用原子写操作（临时文件 + rename）防止部分写入导致的文件损坏。
// 文件权限设置为 0600，仅所有者可读写。
func SavePrivateKeyPEM(i *Identity, path string) error {
	block := &pem.Block{
		Type:  pemTypePrivate,
		Bytes: i.privateKey,
	}

	data := pem.EncodeToMemory(block)
	return atomicWriteFile(path, data, 0600)
}

// LoadPrivateKeyPEM 从 PEM 文件加载身份
func LoadPrivateKeyPEM(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEM
	}
	if block.Type != pemTypePrivate {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKeyType, block.Type)
	}

	priv, err := crypto.UnmarshalPrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	return NewIdentity(priv)
}

// LoadOrCreate 加载或创建身份
//
// 文件存在时加载；不存在时生成新身份并持久化。
// 这是节点启动时获取身份的标准入口。
func LoadOrCreate(path string) (*Identity, error) {
	id, err := LoadPrivateKeyPEM(path)
	if err == nil {
		logger.Debug("已加载节点身份", "node", id.ID().ShortString(), "path", path)
		return id, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return nil, fmt.Errorf("加载身份密钥失败: %w", err)
	}

	id, err = Generate(nil)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("创建密钥目录失败: %w", err)
		}
	}
	if err := SavePrivateKeyPEM(id, path); err != nil {
		return nil, err
	}

	logger.Info("已生成新的节点身份", "node", id.ID().ShortString(), "path", path)
	return id, nil
}

// ============================================================================
//                              原子写操作
// ============================================================================

// atomicWriteFile 原子写文件
//
// 使用临时文件 + rename 策略，防止部分写入导致的文件损坏。
// 流程：
//  1. 写入临时文件（同目录下，前缀 .tmp-）
//  2. 同步到磁盘
//  3. 原子 rename 到目标路径
//
// 如果任何步骤失败，目标文件保持不变。
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	// 在同目录创建临时文件
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmpFile.Name()

	// 确保失败时清理临时文件
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath) // 清理时忽略错误
		}
	}()

	// 写入数据
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("写入临时文件失败: %w", err)
	}

	// 同步到磁盘
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("同步临时文件失败: %w", err)
	}

	// 设置权限
	if err := tmpFile.Chmod(perm); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("设置文件权限失败: %w", err)
	}

	// 关闭文件
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}

	// 原子 rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("原子 rename 失败: %w", err)
	}

	success = true
	return nil
}
