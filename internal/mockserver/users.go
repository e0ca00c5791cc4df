package mockserver

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/listquery"
)

var userSorts = map[string]string{
	"nama":       "nama",
	"created_at": "created_at",
}

// MinPasswordLength is enforced on create and password change.
const MinPasswordLength = 6

func userRow(u gateway.User) gin.H {
	var avatar any
	if u.Avatar != "" {
		avatar = u.Avatar
	}
	return gin.H{
		"id":            u.ID,
		"nama":          u.Name,
		"email":         u.Email,
		"no_telepon":    u.Phone,
		"role":          u.Role,
		"status_user":   u.Status,
		"photo_profile": avatar,
		"created_at":    timestamp(u.CreatedAt),
	}
}

func userFields(row gateway.Row, create bool) (gateway.UserFields, issues) {
	var is issues
	f := gateway.UserFields{
		Name:     text(row, "nama"),
		Email:    text(row, "email"),
		Phone:    text(row, "no_telepon"),
		Role:     text(row, "role"),
		Password: text(row, "password"),
		Status:   status(&is, row, "status_user"),
		Avatar:   text(row, "photo_profile"),
	}

	if create || f.Name != nil {
		if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
			is.add("body", "nama", "field required")
		}
	}
	if create || f.Email != nil {
		if f.Email == nil {
			is.add("body", "email", "field required")
		} else if _, err := mail.ParseAddress(*f.Email); err != nil {
			is.add("body", "email", "value is not a valid email address")
		}
	}
	if create && (f.Phone == nil || strings.TrimSpace(*f.Phone) == "") {
		is.add("body", "no_telepon", "field required")
	}
	if f.Role != nil && *f.Role != gateway.RoleAdmin && *f.Role != gateway.RoleUser {
		is.add("body", "role", "role must be admin or user")
	}
	if f.Status != nil && !f.Status.Toggleable() {
		is.add("body", "status_user", "status must be aktif or nonaktif")
	}
	if create && (f.Password == nil || *f.Password == "") {
		is.add("body", "password", "field required")
	}
	if f.Password != nil && *f.Password != "" && len(*f.Password) < MinPasswordLength {
		is.add("body", "password", "ensure this value has at least 6 characters")
	}
	return f, is
}

// userByEmail finds a user by exact, case-insensitive email.
func (s *Server) userByEmail(ctx context.Context, email string) (gateway.User, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return gateway.User{}, false
	}
	res := s.users.List(ctx, listquery.Query{Page: 1, PageSize: MaxPageSize, Search: email})
	if !res.OK() {
		return gateway.User{}, false
	}
	for _, u := range res.Data().Records {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return gateway.User{}, false
}

func (s *Server) emailTaken(c *gin.Context, email *string, self int64) bool {
	if email == nil {
		return false
	}
	if u, ok := s.userByEmail(c.Request.Context(), *email); ok && u.ID != self {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email sudah terdaftar"})
		return true
	}
	return false
}

func (s *Server) listUsers(c *gin.Context) {
	q, ok := listQuery(c, userSorts, "nama", "status")
	if !ok {
		return
	}
	res := s.users.List(c.Request.Context(), q)
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	c.JSON(http.StatusOK, envelope(res.Data(), userRow))
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res := s.users.Get(c.Request.Context(), id)
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	c.JSON(http.StatusOK, userRow(res.Data()))
}

func (s *Server) createUser(c *gin.Context) {
	row, ok := readBody(c)
	if !ok {
		return
	}
	fields, is := userFields(row, true)
	if is.abort(c) || s.emailTaken(c, fields.Email, 0) {
		return
	}
	res := s.users.Create(c.Request.Context(), fields)
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	if err := s.setPassword(res.Data().ID, *fields.Password); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, userRow(res.Data()))
}

func (s *Server) updateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, ok := readBody(c)
	if !ok {
		return
	}
	fields, is := userFields(row, false)
	if is.abort(c) || s.emailTaken(c, fields.Email, id) {
		return
	}
	res := s.users.Update(c.Request.Context(), id, fields)
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	if fields.Password != nil && *fields.Password != "" {
		if err := s.setPassword(id, *fields.Password); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, userRow(res.Data()))
}

func (s *Server) patchUserStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, ok := readBody(c)
	if !ok {
		return
	}
	var is issues
	st := status(&is, row, "status_user")
	if st == nil && len(is) == 0 {
		is.add("body", "status_user", "field required")
	}
	if is.abort(c) {
		return
	}
	res := s.users.UpdateStatus(c.Request.Context(), id, *st)
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	c.JSON(http.StatusOK, userRow(res.Data()))
}

func (s *Server) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if id == c.GetInt64(ctxUserID) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Tidak dapat menghapus akun sendiri"})
		return
	}
	res := s.users.Delete(c.Request.Context(), id)
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	s.mu.Lock()
	delete(s.passwords, id)
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}
