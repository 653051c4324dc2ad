package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"taskboard/events"
	"taskboard/middleware"
	"taskboard/models"
)

type EventController struct {
	Hub    *events.Hub
	Logger *logrus.Entry
}

func NewEventController(hub *events.Hub, logger *logrus.Entry) *EventController {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &EventController{Hub: hub, Logger: logger}
}

// RequireUpgrade lets only websocket handshakes through to Stream.
func (ec *EventController) RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Stream pushes the team's events to the socket until either side hangs up.
func (ec *EventController) Stream(conn *websocket.Conn) {
	defer conn.Close()

	user, ok := conn.Locals(middleware.UserKey).(*models.User)
	if !ok || user == nil {
		return
	}
	log := ec.Logger.WithFields(logrus.Fields{
		"username": user.Username,
		"team_id":  user.TeamID,
	})

	stream, unsubscribe := ec.Hub.Subscribe(user.TeamID)
	defer unsubscribe()
	log.Info("Event stream opened")

	// Clients never send anything useful; reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			log.Info("Event stream closed")
			return
		case e, ok := <-stream:
			if !ok {
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				log.WithError(err).Warn("Error writing event")
				return
			}
		}
	}
}
