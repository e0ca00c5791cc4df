package mockserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oarkflow/mebel/internal/auth"
	"github.com/oarkflow/mebel/internal/gateway"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []issue{{
			Loc: []string{"body"}, Msg: "email dan password wajib diisi", Type: "value_error",
		}}})
		return
	}

	u, ok := s.userByEmail(c.Request.Context(), req.Email)
	if !ok || !s.checkPassword(u.ID, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": auth.MsgBadCredentials})
		return
	}
	if u.Status != gateway.StatusActive {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Akun tidak aktif"})
		return
	}

	token, err := auth.IssueToken(s.opts.Secret, u.ID, u.Role, s.opts.TokenTTL)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user": gin.H{
			"id":    u.ID,
			"nama":  u.Name,
			"email": strings.ToLower(u.Email),
			"role":  u.Role,
		},
	})
}

func (s *Server) me(c *gin.Context) {
	res := s.users.Get(c.Request.Context(), c.GetInt64(ctxUserID))
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	c.JSON(http.StatusOK, userRow(res.Data()))
}
