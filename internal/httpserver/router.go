package httpserver

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"carton-service/internal/domain"
	"carton-service/internal/service/session"
)

const (
	sessionHeader = "X-Session-Token"
	actorCtxKey   = "actor"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/sessions", issueSessionHandler(deps.Sessions))
	router.POST("/signup", signupHandler(deps.UserSvc))
	router.POST("/login", loginHandler(deps.UserSvc))

	authed := router.Group("/")
	authed.Use(actorMiddleware(deps.UserSvc))
	{
		authed.POST("/carts", createCartHandler(deps.CartSvc))
		authed.GET("/cart", getCartHandler(deps.CartSvc))
		authed.DELETE("/cart", destroyCartHandler(deps.CartSvc))
		authed.POST("/cart/lines", addLineHandler(deps.CartSvc))
		authed.PATCH("/cart/lines/:lineID", updateLineQuantityHandler(deps.CartSvc))
	}

	return router
}

type tokenValidator interface {
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
}

// actorMiddleware builds the Actor for the request: the session token comes
// from X-Session-Token, the optional user identity from a bearer token.
func actorMiddleware(users tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(sessionHeader))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "session token required"})
			return
		}

		actor := session.Actor{Token: token}
		if auth := strings.TrimSpace(c.GetHeader("Authorization")); auth != "" {
			bearer := strings.TrimPrefix(auth, "Bearer ")
			u, err := users.LookupByToken(c.Request.Context(), bearer)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid access token"})
				return
			}
			actor.UserID = &u.ID
		}

		c.Set(actorCtxKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) session.Actor {
	v, _ := c.Get(actorCtxKey)
	actor, _ := v.(session.Actor)
	return actor
}

func issueSessionHandler(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"token": sessions.Issue()})
	}
}
