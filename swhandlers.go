package mdblog

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mdblog/worker"
)

const maxPushPayload = 4 << 10

type workerStatus struct {
	State      string            `json:"state"`
	Partitions worker.Partitions `json:"partitions"`
}

type registerRequest struct {
	URL string `json:"url"`
}

// registerWorkerRoutes exposes the worker's message channel to pages.
func (a *App) registerWorkerRoutes(g *echo.Group) {
	g.GET("/status", a.handleWorkerStatus)
	g.GET("/notifications", a.handleNotifications)
	g.POST("/message", a.handleWorkerMessage, a.rateLimit)
	g.POST("/push", a.handlePush, a.rateLimit)
	g.POST("/notificationclick", a.handleNotificationClick, a.rateLimit)
	g.POST("/clients", a.handleRegisterClient, a.rateLimit)
}

func (a *App) handleWorkerStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, workerStatus{
		State:      a.Worker.State().String(),
		Partitions: a.Worker.Partitions(),
	})
}

func (a *App) handleNotifications(c echo.Context) error {
	return c.JSON(http.StatusOK, a.notifications.List())
}

func (a *App) handleWorkerMessage(c echo.Context) error {
	var msg worker.Message
	if err := c.Bind(&msg); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid message"})
	}
	err := a.Worker.PostMessage(msg)
	switch {
	case errors.Is(err, worker.ErrUnknownMessage):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, worker.ErrMailboxFull):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case err != nil:
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

func (a *App) handlePush(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPushPayload))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "unreadable payload"})
	}
	if err := a.Worker.Push(c.Request().Context(), payload); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusAccepted)
}

func (a *App) handleNotificationClick(c echo.Context) error {
	var n worker.Notification
	if err := c.Bind(&n); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid notification"})
	}
	client, err := a.Worker.NotificationClick(c.Request().Context(), n)
	if err != nil {
		c.Logger().Warnf("notification click: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "notification click failed"})
	}
	return c.JSON(http.StatusOK, client)
}

func (a *App) handleRegisterClient(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil || req.URL == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "url is required"})
	}
	return c.JSON(http.StatusCreated, a.clients.Register(req.URL))
}
