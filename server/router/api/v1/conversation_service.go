package v1

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/usememos/convo/plugin/exchange"
	"github.com/usememos/convo/store"
)

type storeConversationRequest struct {
	ThreadID  uuid.UUID           `json:"thread_id"`
	Exchanges []exchange.Exchange `json:"exchanges"`
}

type conversationPreviewResponse struct {
	ID        int64  `json:"id"`
	CreatedAt int64  `json:"created_at"`
	Title     string `json:"title"`
}

func (s *APIV1Service) listConversations(c *echo.Context) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return err
	}
	projectID, err := parseIDParam(c, "projectID")
	if err != nil {
		return err
	}
	previews, err := s.Store.ListConversationPreviews(c.Request().Context(), &store.FindConversationPreview{
		UserID:    userID,
		ProjectID: projectID,
	})
	if err != nil {
		return toHTTPError(err, "failed to list conversations")
	}
	resp := make([]conversationPreviewResponse, 0, len(previews))
	for _, preview := range previews {
		resp = append(resp, conversationPreviewResponse{
			ID:        preview.ID,
			CreatedAt: preview.CreatedAt,
			Title:     preview.Title,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) getConversation(c *echo.Context) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return err
	}
	projectID, err := parseIDParam(c, "projectID")
	if err != nil {
		return err
	}
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	conv, err := s.Store.GetConversation(c.Request().Context(), &store.FindConversation{
		UserID:    userID,
		ProjectID: projectID,
		ID:        conversationID,
	})
	if err != nil {
		return toHTTPError(err, "failed to get conversation")
	}
	resp := make([]exchange.Exchange, 0, len(conv.Exchanges))
	for _, ex := range conv.Exchanges {
		resp = append(resp, s.project(ex))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) storeConversation(c *echo.Context) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return err
	}
	projectID, err := parseIDParam(c, "projectID")
	if err != nil {
		return err
	}
	var req storeConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid conversation payload")
	}
	stored, err := s.Store.UpsertConversation(c.Request().Context(), &store.UpsertConversation{
		Conversation: &store.Conversation{
			ThreadID:  req.ThreadID,
			ProjectID: projectID,
			Exchanges: req.Exchanges,
		},
		UserID: userID,
	})
	if err != nil {
		return toHTTPError(err, "failed to store conversation")
	}
	return c.JSON(http.StatusOK, conversationPreviewResponse{
		ID:        stored.ID,
		CreatedAt: stored.CreatedAt,
		Title:     stored.Title,
	})
}

func (s *APIV1Service) deleteConversation(c *echo.Context) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return err
	}
	projectID, err := parseIDParam(c, "projectID")
	if err != nil {
		return err
	}
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.Store.DeleteConversation(c.Request().Context(), &store.DeleteConversation{
		UserID:    userID,
		ProjectID: projectID,
		ID:        conversationID,
	}); err != nil {
		return toHTTPError(err, "failed to delete conversation")
	}
	return c.NoContent(http.StatusNoContent)
}

func parseIDParam(c *echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
