package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"foodmemories/internal/model"
	"foodmemories/internal/service"
)

const participantNotFound = "Participant not found"

// ListParticipants returns every participant, newest first.
//
//	@Summary	List participants
//	@Tags		participants
//	@Produce	json
//	@Success	200	{array}		model.Participant
//	@Failure	500	{object}	errorPayload
//	@Router		/api/participants [get]
func ListParticipants(svc service.ParticipantService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, log, err, participantNotFound)
		}
		return c.JSON(items)
	}
}

// GetParticipant returns one participant.
//
//	@Summary	Get participant
//	@Tags		participants
//	@Produce	json
//	@Param		id	path		string	true	"Participant ID"
//	@Success	200	{object}	model.Participant
//	@Failure	404	{object}	errorPayload
//	@Router		/api/participants/{id} [get]
func GetParticipant(svc service.ParticipantService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, log, err, participantNotFound)
		}
		return c.JSON(p)
	}
}

// CreateParticipant stores a new participant. name is required.
//
//	@Summary	Create participant
//	@Tags		participants
//	@Accept		json
//	@Produce	json
//	@Param		body	body		model.ParticipantFields	true	"Participant"
//	@Success	201		{object}	model.Participant
//	@Failure	400		{object}	errorPayload
//	@Router		/api/participants [post]
func CreateParticipant(svc service.ParticipantService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.ParticipantFields
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		}
		p, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, log, err, participantNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// UpdateParticipant replaces all editable fields of a participant.
//
//	@Summary	Update participant
//	@Tags		participants
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Participant ID"
//	@Param		body	body		model.ParticipantFields	true	"Participant"
//	@Success	200		{object}	model.Participant
//	@Failure	400		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Router		/api/participants/{id} [put]
func UpdateParticipant(svc service.ParticipantService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.ParticipantFields
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		}
		p, err := svc.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return writeServiceError(c, log, err, participantNotFound)
		}
		return c.JSON(p)
	}
}

// DeleteParticipant removes a participant. Photos keep their stale reference.
//
//	@Summary	Delete participant
//	@Tags		participants
//	@Param		id	path	string	true	"Participant ID"
//	@Success	204
//	@Failure	404	{object}	errorPayload
//	@Router		/api/participants/{id} [delete]
func DeleteParticipant(svc service.ParticipantService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return writeServiceError(c, log, err, participantNotFound)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
