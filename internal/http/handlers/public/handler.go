package public

import "github.com/velo-shop/internal/provider"

// Handler 前台/公开接口处理器入口。
// 仅用于店面、游客及已登录用户侧 API。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
