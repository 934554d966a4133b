package ginserver

import (
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"tourhub/internal/domain/authz"
)

const actorContextKey = "tourhub.actor"

type TokenParser interface {
	Parse(raw string) (authz.Actor, error)
}

// AuthMiddleware resolves a bearer token into an actor. Requests without a
// valid token continue as anonymous; handlers decide whether that is enough.
type AuthMiddleware struct {
	Tokens TokenParser
	Logger *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Tokens == nil {
		c.Next()
		return
	}
	actor, err := m.Tokens.Parse(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	c.Set(actorContextKey, actor)
	c.Next()
}

func currentActor(c *gin.Context) authz.Actor {
	val, exists := c.Get(actorContextKey)
	if !exists {
		return authz.Anonymous
	}
	actor, ok := val.(authz.Actor)
	if !ok {
		return authz.Anonymous
	}
	return actor
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
