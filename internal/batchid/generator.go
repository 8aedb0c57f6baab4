// Package batchid 预生成随机且未被占用的批次 ID
package batchid

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// Charset 包含用于生成批次 ID 的所有字符
	Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CodeLength 是生成的批次 ID 的长度
	CodeLength = 8
	// ChannelBufferSize 是预生成通道的缓冲区大小
	ChannelBufferSize = 64
	// MinFillThreshold 是触发补充的最小阈值
	MinFillThreshold = 16
	// maxAttempts 单次生成时的最大冲突重试次数
	maxAttempts = 10
)

var ErrExhausted = errors.New("batch id generator: too many collisions")

// Checker 判断批次 ID 是否已被占用
type Checker interface {
	BatchExists(ctx context.Context, batchID string) (bool, error)
}

// Generator 负责生成和提供唯一的批次 ID
type Generator struct {
	checker   Checker
	codeChan  chan string
	mu        sync.Mutex
	isFilling bool
	stopOnce  sync.Once
	stopChan  chan struct{}
	logger    *zap.SugaredLogger
}

// NewGenerator 创建一个新的批次 ID 生成器实例
func NewGenerator(checker Checker, logger *zap.SugaredLogger) *Generator {
	return &Generator{
		checker:  checker,
		codeChan: make(chan string, ChannelBufferSize),
		stopChan: make(chan struct{}),
		logger:   logger.Named("batchid_generator"),
	}
}

// Start 启动后台生成和补充任务
func (g *Generator) Start() {
	g.logger.Info("启动批次 ID 生成器...")
	go g.fillChannel()
	go g.monitorAndRefill()
}

// Stop 停止生成器，可重复调用
func (g *Generator) Stop() {
	g.stopOnce.Do(func() {
		g.logger.Info("正在停止批次 ID 生成器...")
		close(g.stopChan)
	})
}

// NewID 从预生成通道取一个 ID；通道为空或生成器未启动时同步生成
func (g *Generator) NewID(ctx context.Context) (string, error) {
	select {
	case code := <-g.codeChan:
		// 预生成之后可能已被其他实例占用，取用时再确认一次
		if taken, err := g.checker.BatchExists(ctx, code); err == nil && !taken {
			return code, nil
		}
	default:
	}
	return g.generateUniqueCode(ctx)
}

// monitorAndRefill 监视通道的填充水平并根据需要进行补充
func (g *Generator) monitorAndRefill() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if len(g.codeChan) < MinFillThreshold {
				g.fillChannel()
			}
		case <-g.stopChan:
			g.logger.Info("已停止监控和补充任务。")
			return
		}
	}
}

// fillChannel 生成批次 ID 并填充通道
func (g *Generator) fillChannel() {
	g.mu.Lock()
	if g.isFilling {
		g.mu.Unlock()
		return
	}
	g.isFilling = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.isFilling = false
		g.mu.Unlock()
	}()

	for len(g.codeChan) < ChannelBufferSize {
		select {
		case <-g.stopChan:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		code, err := g.generateUniqueCode(ctx)
		cancel()
		if err != nil {
			g.logger.Errorf("生成批次 ID 时出错: %v", err)
			select {
			case <-g.stopChan:
				return
			case <-time.After(time.Second): // 避免在错误情况下快速循环
			}
			continue
		}

		select {
		case g.codeChan <- code:
		default:
			return
		}
	}
	g.logger.Debugf("批次 ID 通道已填满，现有 %d 个。", len(g.codeChan))
}

// generateUniqueCode 生成一个在数据库中尚未使用的批次 ID
func (g *Generator) generateUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code, err := RandomString(CodeLength)
		if err != nil {
			return "", err
		}
		taken, err := g.checker.BatchExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	g.logger.Warnf("已尝试 %d 次生成批次 ID，但均存在冲突。", maxAttempts)
	return "", ErrExhausted
}

// RandomString 使用加密安全的随机数生成器生成一个给定长度的字符串
func RandomString(length int) (string, error) {
	b := make([]byte, length)
	n := big.NewInt(int64(len(Charset)))
	for i := range b {
		num, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", err
		}
		b[i] = Charset[num.Int64()]
	}
	return string(b), nil
}
