package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"budgeter/models"
	"budgeter/pkg/authn"
	"budgeter/pkg/config"
	"budgeter/pkg/events"
	"budgeter/pkg/ledger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	userKey   = "user"
	userIDKey = "user_id"
)

// app holds the dependencies shared by the HTTP handlers.
type app struct {
	log          *slog.Logger
	store        *ledger.Store
	auth         *authn.Authenticator
	budgets      *ledger.BudgetService
	categories   *ledger.CategoryService
	transactions *ledger.TransactionService
}

func newApp(cfg *config.Config, db *gorm.DB, pub events.Publisher, logger *slog.Logger) *app {
	store := ledger.NewStore(db)
	opts := []ledger.Option{
		ledger.WithPublisher(pub),
		ledger.WithLogger(logger),
		ledger.WithStrictCategoryOwnership(cfg.Ledger.StrictTransactionCategory),
	}
	return &app{
		log:          logger,
		store:        store,
		auth:         authn.New(cfg.Auth),
		budgets:      ledger.NewBudgetService(store, opts...),
		categories:   ledger.NewCategoryService(store, opts...),
		transactions: ledger.NewTransactionService(store, opts...),
	}
}

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(a.log))
	setupRoutes(r, a)
	return r
}

func setupRoutes(r *gin.Engine, a *app) {
	r.POST("/users/", a.createUserHandler)
	r.GET("/users/:id", a.getUserHandler)
	r.POST("/login", a.loginHandler)

	budgets := r.Group("/budgets")
	budgets.GET("/all", a.allBudgetsHandler)
	budgets.Use(a.authGate())
	budgets.GET("/", a.getBudgetHandler)
	budgets.POST("/", a.createBudgetHandler)
	budgets.PUT("/", a.updateBudgetHandler)
	budgets.DELETE("/", a.deleteBudgetHandler)

	categories := r.Group("/category")
	categories.GET("/all", a.allCategoriesHandler)
	categories.Use(a.authGate())
	categories.GET("/", a.listCategoriesHandler)
	categories.POST("/", a.createCategoryHandler)
	categories.PUT("/:id", a.updateCategoryHandler)
	categories.DELETE("/:id", a.deleteCategoryHandler)

	transactions := r.Group("/transaction")
	transactions.GET("/all", a.allTransactionsHandler)
	transactions.Use(a.authGate())
	transactions.GET("/", a.listTransactionsHandler)
	transactions.GET("/:id", a.getTransactionHandler)
	transactions.POST("/", a.createTransactionHandler)
	transactions.PUT("/:id", a.updateTransactionHandler)
	transactions.DELETE("/:id", a.deleteTransactionHandler)
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": msg})
}

// authGate resolves the bearer token to an existing, active user before any
// resource logic runs.
func (a *app) authGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := authn.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "Not authenticated")
			return
		}
		uid, err := a.auth.Resolve(token)
		if err != nil {
			unauthorized(c, "Could not validate credentials")
			return
		}
		user, err := a.store.UserByID(uid)
		if err != nil {
			a.abortWithError(c, err)
			return
		}
		if user == nil || !user.Active() {
			unauthorized(c, "Could not validate credentials")
			return
		}
		c.Set(userKey, user)
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// currentUserID is only valid behind authGate.
func currentUserID(c *gin.Context) uint {
	return c.MustGet(userKey).(*models.User).ID
}

func statusFor(kind ledger.Kind) int {
	switch kind {
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindUnauthorized:
		return http.StatusUnauthorized
	case ledger.KindConflict:
		return http.StatusBadRequest
	case ledger.KindUnprocessable:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// abortWithError writes the ledger error as {"detail": msg}. Anything that is
// not a ledger error is logged and hidden behind a 500.
func (a *app) abortWithError(c *gin.Context, err error) {
	var le *ledger.Error
	if !errors.As(err, &le) {
		a.log.Error("request failed", "path", c.FullPath(), "request_id", c.GetString("request_id"), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal Server Error"})
		return
	}
	if le.Kind == ledger.KindUnauthorized {
		unauthorized(c, le.Message)
		return
	}
	c.AbortWithStatusJSON(statusFor(le.Kind), gin.H{"detail": le.Message})
}

// bindJSON reports malformed or incomplete bodies as 422.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return false
	}
	return true
}

// pathID parses the :id segment; anything but a positive integer is a 422.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "id must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}
