package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"khrental/internal/middleware"
	"khrental/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	actor, err := middleware.MustGetActor(c)
	if err != nil {
		return err
	}

	unreadOnly := c.Query("unread_only") == "true"

	result, err := h.notifService.List(c.UserContext(), actor.ID, unreadOnly, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	actor, err := middleware.MustGetActor(c)
	if err != nil {
		return err
	}

	count, err := h.notifService.GetUnreadCount(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": count,
	})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	actor, err := middleware.MustGetActor(c)
	if err != nil {
		return err
	}

	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid notification ID")
	}

	if err := h.notifService.MarkAsRead(c.UserContext(), actor.ID, notifID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	actor, err := middleware.MustGetActor(c)
	if err != nil {
		return err
	}

	if err := h.notifService.MarkAllAsRead(c.UserContext(), actor.ID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}
