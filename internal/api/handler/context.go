package handler

import (
	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/gin-gonic/gin"
)

const userContextKey = "auth_user"

// SetUser stores the authenticated caller on the request context
func SetUser(c *gin.Context, user *domain.User) {
	c.Set(userContextKey, user)
}

// CurrentUser returns the caller stored by the auth middleware
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}

// currentActor aborts with 401 when no caller was authenticated
func currentActor(c *gin.Context) (domain.Actor, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "No token, authorization denied")
		return domain.Actor{}, false
	}
	return user.Actor(), true
}
