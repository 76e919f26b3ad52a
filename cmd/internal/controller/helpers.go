package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user ID set by the auth middleware.
// A missing or mistyped value aborts the request.
func currentUser(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return 0, false
	}
	uid, ok := userID.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID"})
		return 0, false
	}
	return uid, true
}

// pathID parses a numeric path parameter; on failure the request is aborted
// with a 400.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
