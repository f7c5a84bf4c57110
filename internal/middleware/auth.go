package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/flicky/greenmart/internal/model"
)

const (
	currentUserKey = "currentUser"
	sessionUserKey = "user_id"
	landingPath    = "/"
)

type TokenParser interface {
	ParseToken(raw string) (int64, error)
}

// UserLoader returns nil without error for an id that no longer exists.
type UserLoader interface {
	LoadUser(ctx context.Context, id int64) (*model.User, error)
}

type Auth struct {
	sessions    sessions.Store
	sessionName string
	tokens      TokenParser
	users       UserLoader
	log         *slog.Logger
}

func NewAuth(store sessions.Store, sessionName string, tokens TokenParser, users UserLoader, log *slog.Logger) *Auth {
	return &Auth{sessions: store, sessionName: sessionName, tokens: tokens, users: users, log: log}
}

// Authenticate resolves the caller from a bearer token or the session cookie
// and stores the user on the context. Anonymous requests pass through.
func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := a.identify(c)
		if !ok {
			c.Next()
			return
		}

		user, err := a.users.LoadUser(c.Request.Context(), id)
		if err != nil {
			a.log.Error("load session user", "user_id", id, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if user != nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

func (a *Auth) identify(c *gin.Context) (int64, bool) {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		id, err := a.tokens.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return 0, false
		}
		return id, true
	}

	sess, err := a.sessions.Get(c.Request, a.sessionName)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Values[sessionUserKey].(int64)
	return id, ok && id > 0
}

func (a *Auth) StartSession(c *gin.Context, user *model.User) error {
	sess, _ := a.sessions.Get(c.Request, a.sessionName)
	sess.Values[sessionUserKey] = user.ID
	return sess.Save(c.Request, c.Writer)
}

func (a *Auth) EndSession(c *gin.Context) error {
	sess, _ := a.sessions.Get(c.Request, a.sessionName)
	delete(sess.Values, sessionUserKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request, c.Writer)
}

// Capability decides whether the current user (nil when anonymous) may proceed.
type Capability func(user *model.User) bool

func Authenticated(user *model.User) bool { return user != nil }

func IsAdmin(user *model.User) bool { return user.IsAdmin() }

func IsCustomer(user *model.User) bool {
	return user != nil && user.Role == model.RoleCustomer
}

// Require redirects to the landing page when the capability is not met.
func Require(capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !capability(CurrentUser(c)) {
			c.Redirect(http.StatusSeeOther, landingPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *model.User {
	v, _ := c.Get(currentUserKey)
	user, _ := v.(*model.User)
	return user
}

// GetUserID returns 0 for anonymous requests.
func GetUserID(c *gin.Context) int64 {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}
