package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "github.com/shabani2/salemanagement-api/internal/core/context"
	"github.com/shabani2/salemanagement-api/internal/core/security"
)

// Scope middleware resolves the caller's access scope from their role and
// organizational binding. Runs after Auth so the user context is populated.
// Every downstream ledger and order query conjoins the resolved scope.
func Scope(topo security.Topology) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		scope, err := security.Resolve(ctx, appctx.GetUser(ctx), topo)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(security.WithScope(ctx, scope))
		c.Next()
	}
}
