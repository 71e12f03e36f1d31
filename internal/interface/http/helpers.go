package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	"github.com/wicaksana/ledgeraudit/internal/interface/middleware"
)

func timeoutCtx(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}

// companyScope returns the company the request may act on. Admins may name
// any company via the :id param or company_id query; standard users are
// pinned to their own.
func companyScope(c *gin.Context) (string, bool) {
	user, ok := middleware.UserFromCtx(c)
	if !ok {
		return "", false
	}
	requested := c.Param("id")
	if requested == "" {
		requested = c.Query("company_id")
	}
	if user.Role == entity.RoleAdmin {
		if requested != "" {
			return requested, true
		}
		return user.CompanyID, user.CompanyID != ""
	}
	if requested != "" && requested != user.CompanyID {
		return "", false
	}
	return user.CompanyID, user.CompanyID != ""
}

// canReadCompany reports whether the caller may read data belonging to the
// company. Admins read everything.
func canReadCompany(c *gin.Context, companyID string) bool {
	user, ok := middleware.UserFromCtx(c)
	if !ok {
		return false
	}
	return user.Role == entity.RoleAdmin || user.CompanyID == companyID
}
