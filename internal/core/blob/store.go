package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-beam/internal/config"
	"github.com/dep2p/go-beam/pkg/lib/log"
	"github.com/dep2p/go-beam/pkg/types"
)

var logger = log.Logger("blob")

// 索引键前缀
var (
	prefixEntry    = []byte("b/") // 内容条目
	prefixManifest = []byte("m/") // 目录清单
)

const (
	// gcInterval 值日志垃圾回收周期
	gcInterval = 5 * time.Minute

	// gcDiscardRatio 垃圾回收的空间回收阈值
	gcDiscardRatio = 0.5
)

// Store 内容索引
//
// 登记内容的哈希、路径与校验树，数据本体保留在原始文件中。
// 所有方法并发安全。
type Store struct {
	db    *badger.DB
	cache *lru.Cache[types.Hash, []byte]

	closed   atomic.Bool
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
}

// NewStore 创建内容索引
//
// cfg.InMemory 为 true 时索引仅驻留内存，进程退出后丢失；
// 否则在 cfg.IndexPath 打开（或创建）BadgerDB 目录。
func NewStore(cfg config.BlobConfig) (*Store, error) {
	if !cfg.InMemory && cfg.IndexPath == "" {
		return nil, fmt.Errorf("blob: 持久化索引需要 IndexPath")
	}

	opts, err := buildBadgerOptions(cfg)
	if err != nil {
		return nil, err
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开内容索引失败: %w", err)
	}

	cacheSize := cfg.OutboardCacheSize
	if cacheSize <= 0 {
		cacheSize = config.DefaultOutboardCacheSize
	}
	cache, err := lru.New[types.Hash, []byte](cacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("创建校验树缓存失败: %w", err)
	}

	gcCtx, gcCancel := context.WithCancel(context.Background())
	s := &Store{
		db:       db,
		cache:    cache,
		gcCancel: gcCancel,
	}

	// 内存模式没有值日志，无需回收
	if !cfg.InMemory {
		s.startGC(gcCtx)
	}

	logger.Info("内容索引已打开",
		"path", cfg.IndexPath,
		"in_memory", cfg.InMemory)

	return s, nil
}

// buildBadgerOptions 构建 BadgerDB 配置
func buildBadgerOptions(cfg config.BlobConfig) (badger.Options, error) {
	if cfg.InMemory {
		return badger.DefaultOptions("").
			WithInMemory(true).
			WithLogger(nil), nil
	}

	if err := os.MkdirAll(cfg.IndexPath, 0o700); err != nil {
		return badger.Options{}, fmt.Errorf("创建索引目录失败: %w", err)
	}

	return badger.DefaultOptions(cfg.IndexPath).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil), nil
}

// ============================================================
//	登记
// ============================================================

// Add 登记单个文件
//
// 流式计算 BLAKE3 哈希与校验树后写入索引，数据本体不复制，
// 留在原路径。重复登记同一内容是幂等的，后写覆盖前写。
func (s *Store) Add(path string) (*Entry, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("解析路径失败: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("读取文件信息失败: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegularFile, abs)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	hash, outboard, err := ComputeOutboard(f, info.Size())
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		Hash:     hash,
		Path:     abs,
		Size:     info.Size(),
		Added:    time.Now(),
		Outboard: outboard,
	}
	if err := s.putEntry(entry); err != nil {
		return nil, err
	}

	logger.Debug("内容已登记",
		"hash", hash.ShortString(),
		"path", abs,
		"size", info.Size())

	return entry, nil
}

// AddDir 登记目录
//
// 遍历目录下所有普通文件（按路径字典序），逐个登记后生成清单，
// 清单本身作为内联内容登记，其哈希即目录的内容标识。
func (s *Store) AddDir(dir string) (*Entry, *Manifest, error) {
	if s.closed.Load() {
		return nil, nil, ErrStoreClosed
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("解析路径失败: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, nil, fmt.Errorf("读取目录信息失败: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	var manifest Manifest
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		entry, err := s.Add(p)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		manifest.Entries = append(manifest.Entries, ManifestEntry{
			Name: filepath.ToSlash(rel),
			Hash: entry.Hash,
			Size: entry.Size,
		})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("遍历目录失败: %w", err)
	}
	if len(manifest.Entries) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptyDir, abs)
	}

	entry, err := s.AddManifest(&manifest)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("目录已登记",
		"hash", entry.Hash.ShortString(),
		"files", len(manifest.Entries),
		"total_size", manifest.TotalSize())

	return entry, &manifest, nil
}

// AddManifest 登记清单
//
// 清单自身作为内联内容登记，其哈希即整组内容的标识。
// 调用方负责保证清单引用的条目已全部入库。
func (s *Store) AddManifest(manifest *Manifest) (*Entry, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	if len(manifest.Entries) == 0 {
		return nil, fmt.Errorf("%w: 清单为空", ErrInvalidManifest)
	}

	data := EncodeManifest(manifest)

	entry, err := s.addInline(data)
	if err != nil {
		return nil, err
	}

	// 清单另存一份记录，标记该哈希对应一组内容而非单个文件
	if err := s.put(manifestKey(entry.Hash), data); err != nil {
		return nil, err
	}
	return entry, nil
}

// addInline 登记内联内容（数据随条目入库）
func (s *Store) addInline(data []byte) (*Entry, error) {
	hash, outboard := ComputeOutboardBuf(data)

	entry := &Entry{
		Hash:     hash,
		Size:     int64(len(data)),
		Added:    time.Now(),
		Outboard: outboard,
		Inline:   append([]byte(nil), data...),
	}
	if err := s.putEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ============================================================
//	查询
// ============================================================

// Get 按哈希取回条目
func (s *Store) Get(hash types.Hash) (*Entry, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(hash))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, convertError(err)
	}
	return decodeEntry(raw)
}

// Has 检查哈希是否已登记
func (s *Store) Has(hash types.Hash) (bool, error) {
	if s.closed.Load() {
		return false, ErrStoreClosed
	}

	var exists bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(entryKey(hash))
		if err == nil {
			exists = true
			return nil
		}
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	return exists, err
}

// Outboard 取回内容的 Bao 校验树
//
// 热点校验树经 LRU 缓存，避免每次请求都读库。
func (s *Store) Outboard(hash types.Hash) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	if ob, ok := s.cache.Get(hash); ok {
		return ob, nil
	}

	entry, err := s.Get(hash)
	if err != nil {
		return nil, err
	}
	s.cache.Add(hash, entry.Outboard)
	return entry.Outboard, nil
}

// Open 打开内容的读取流
//
// 内联内容直接从条目返回；文件内容重新打开原路径，
// 并核对大小，登记后被修改过的文件拒绝提供。
func (s *Store) Open(hash types.Hash) (io.ReadCloser, *Entry, error) {
	entry, err := s.Get(hash)
	if err != nil {
		return nil, nil, err
	}

	if entry.IsInline() {
		return io.NopCloser(bytes.NewReader(entry.Inline)), entry, nil
	}

	f, err := os.Open(entry.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("打开内容文件失败: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("读取文件信息失败: %w", err)
	}
	if info.Size() != entry.Size {
		f.Close()
		return nil, nil, fmt.Errorf("%w: 文件大小已变化 (%d != %d)", ErrVerificationFailed, info.Size(), entry.Size)
	}

	return f, entry, nil
}

// Manifest 取回目录清单
//
// 哈希必须由 AddDir 产生，单文件哈希返回 ErrNotFound。
func (s *Store) Manifest(hash types.Hash) (*Manifest, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(manifestKey(hash))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, convertError(err)
	}
	return DecodeManifest(raw)
}

// IsManifest 检查哈希是否对应目录清单
func (s *Store) IsManifest(hash types.Hash) (bool, error) {
	if s.closed.Load() {
		return false, ErrStoreClosed
	}

	var exists bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(manifestKey(hash))
		if err == nil {
			exists = true
			return nil
		}
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	return exists, err
}

// Entries 枚举全部已登记条目
func (s *Store) Entries() ([]*Entry, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	var entries []*Entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixEntry
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			entry, err := decodeEntry(raw)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Close 关闭索引
//
// 幂等，重复调用返回 nil。
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.gcCancel()
	s.gcWg.Wait()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("关闭内容索引失败: %w", err)
	}

	logger.Info("内容索引已关闭")
	return nil
}

// ============================================================
//	内部
// ============================================================

// putEntry 写入条目记录
func (s *Store) putEntry(e *Entry) error {
	return s.put(entryKey(e.Hash), encodeEntry(e))
}

// put 写入单个键值
func (s *Store) put(key, value []byte) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// startGC 启动值日志垃圾回收循环
func (s *Store) startGC(ctx context.Context) {
	s.gcWg.Add(1)
	go func() {
		defer s.gcWg.Done()

		ticker := time.NewTicker(gcInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// 连续回收直到没有可回收的值日志文件
				for s.db.RunValueLogGC(gcDiscardRatio) == nil {
				}
			}
		}
	}()
}

// entryKey 构建条目键
func entryKey(h types.Hash) []byte {
	return append(append(make([]byte, 0, len(prefixEntry)+len(h)), prefixEntry...), h[:]...)
}

// manifestKey 构建清单键
func manifestKey(h types.Hash) []byte {
	return append(append(make([]byte, 0, len(prefixManifest)+len(h)), prefixManifest...), h[:]...)
}

// convertError 转换 BadgerDB 错误为本包错误
func convertError(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}
