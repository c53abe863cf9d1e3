package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/pkg/errors"

	"github.com/usememos/convo/internal/profile"
	"github.com/usememos/convo/plugin/exchange"
	"github.com/usememos/convo/server/auth"
	"github.com/usememos/convo/store"
)

const userIDContextKey = "user-id"

// ExchangeProjector turns a stored exchange into the value sent to clients.
type ExchangeProjector func(exchange.Exchange) exchange.Exchange

type APIV1Service struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	project ExchangeProjector
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store) *APIV1Service {
	return &APIV1Service{
		Secret:  secret,
		Profile: profile,
		Store:   store,
		project: exchange.Exchange.Compressed,
	}
}

// WithExchangeProjector replaces the projection applied on the conversation detail route.
func (s *APIV1Service) WithExchangeProjector(project ExchangeProjector) *APIV1Service {
	s.project = project
	return s
}

// RegisterRoutes mounts the v1 API on e. Every route requires an access token.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1", s.authenticate)
	g.GET("/projects", s.listProjects)
	g.POST("/projects", s.createProject)
	g.GET("/projects/:projectID/conversations", s.listConversations)
	g.PUT("/projects/:projectID/conversations", s.storeConversation)
	g.GET("/projects/:projectID/conversations/:id", s.getConversation)
	g.DELETE("/projects/:projectID/conversations/:id", s.deleteConversation)
}

func (s *APIV1Service) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		token, ok := auth.ExtractBearerToken(c.Request().Header.Get("Authorization"))
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}
		userID, err := auth.ParseAccessToken(token, []byte(s.Secret))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

// requireUserID returns the authenticated caller of the request.
func (s *APIV1Service) requireUserID(c *echo.Context) (string, error) {
	userID, ok := c.Get(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return userID, nil
}

// toHTTPError maps store errors to responses. Storage and internal failures
// are logged and reported without detail.
func toHTTPError(err error, msg string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		slog.Error(msg, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msg)
	}
}
