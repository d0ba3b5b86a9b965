package public

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/velo-shop/internal/http/handlers/shared"
	"github.com/velo-shop/internal/http/response"

	"github.com/gin-gonic/gin"
)

const compareSessionHeader = "X-Compare-Session"

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

// mappedHandlerError 业务错误到响应码的映射规则
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

// compareSessionID 对比清单的会话键：未登录用客户端令牌，已登录用用户 ID。
func compareSessionID(c *gin.Context) (string, bool) {
	if raw, exists := c.Get("user_id"); exists {
		if uid, ok := raw.(uint); ok && uid > 0 {
			return "user:" + strconv.FormatUint(uint64(uid), 10), true
		}
	}
	token := strings.TrimSpace(c.GetHeader(compareSessionHeader))
	if token == "" {
		token = strings.TrimSpace(c.Query("session"))
	}
	if token == "" {
		respondError(c, response.CodeBadRequest, "compare session token missing", nil)
		return "", false
	}
	return "session:" + token, true
}
