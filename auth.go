package main

import (
	"net/http"
	"strings"
	"time"

	"budgeter/models"
	"budgeter/pkg/database"

	"github.com/gin-gonic/gin"
)

type userOut struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserOut(u *models.User) userOut {
	return userOut{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func (a *app) createUserHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)

	existing, err := a.store.UserByEmail(email)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "User with email " + email + " already exists"})
		return
	}

	hash, err := a.auth.HashPassword(req.Password)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	user := &models.User{
		Record:         models.Record{CreatedAt: a.store.Now()},
		Email:          email,
		HashedPassword: hash,
	}
	if err := a.store.Insert(user); err != nil {
		// lost a race with a concurrent registration
		if database.IsUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "User with email " + email + " already exists"})
			return
		}
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserOut(user))
}

func (a *app) getUserHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := a.store.UserByID(id)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	if user == nil || !user.Active() {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User with id: " + c.Param("id") + " does not exist"})
		return
	}
	c.JSON(http.StatusOK, toUserOut(user))
}

// loginHandler accepts the OAuth2 password form (username, password) or the
// same fields as JSON.
func (a *app) loginHandler(c *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	user, err := a.store.UserByEmail(strings.TrimSpace(req.Username))
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	if user == nil || !user.Active() || !a.auth.CheckPassword(user.HashedPassword, req.Password) {
		unauthorized(c, "Invalid Credentials")
		return
	}
	token, err := a.auth.Issue(user.ID)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}
