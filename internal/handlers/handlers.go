package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/meowkart/cat-ecommerce-golang/internal/config"
)

// Handlers holds all dependencies for the HTTP handlers. It is constructed
// once at startup and shared by every route.
type Handlers struct {
	DB     *sqlx.DB
	Cfg    *config.Config
	Logger zerolog.Logger
}

func New(db *sqlx.DB, cfg *config.Config, logger zerolog.Logger) *Handlers {
	return &Handlers{DB: db, Cfg: cfg, Logger: logger}
}

// pageParams reads ?page and ?per_page with sane bounds.
func pageParams(c *gin.Context, defaultPerPage int) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if perPage < 1 || perPage > 100 {
		perPage = defaultPerPage
	}
	return page, perPage
}

// pageCount is ceil(total/perPage), never less than 0.
func pageCount(total, perPage int) int {
	if total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// currentUserID reads the user ID stored by the auth middleware.
func currentUserID(c *gin.Context) string {
	raw, _ := c.Get("userID")
	id, _ := raw.(string)
	return id
}
