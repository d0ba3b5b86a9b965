// Package offline 负责连通性判定与离线降级：
// 类型化的网络错误分类、主库连通性监视器、边缘缓存刷新与同步队列回放。
package offline

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// NetError 网络层失败，用于与业务错误区分后触发离线降级
type NetError struct {
	Op  string
	Err error
}

// Error 实现 error 接口
func (e *NetError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("network failure: %v", e.Err)
	}
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

// Unwrap 返回底层错误
func (e *NetError) Unwrap() error {
	return e.Err
}

// Classify 把网络类失败包装为 *NetError，其他错误原样返回
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var netErr *NetError
	if errors.As(err, &netErr) {
		return err
	}
	if isNetworkFailure(err) {
		return &NetError{Op: op, Err: err}
	}
	return err
}

// IsNetError 判断错误是否属于网络层失败
func IsNetError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *NetError
	if errors.As(err, &netErr) {
		return true
	}
	return isNetworkFailure(err)
}

func isNetworkFailure(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var timeoutErr net.Error
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ECONNABORTED,
		syscall.EPIPE,
		syscall.EHOSTUNREACH,
		syscall.ENETUNREACH,
		syscall.ETIMEDOUT,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
