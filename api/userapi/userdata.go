package userapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/sugarswap/sugarswap/storage/model"
)

// dayFormat is the calendar-date layout used for rollover comparisons
const dayFormat = "2006-01-02"

type userDataReq struct {
	Gamification model.GamificationState `json:"gamification_state"`
	ProductCache model.ProductCache      `json:"product_cache"`
}

// registerUserData wires the per-user state read and write handlers.
// Both are gated by the session middleware.
func registerUserData(r fiber.Router, users model.UsersStore, sessions *session.Store) {
	r.Use(requireSession(sessions))

	r.Get(
		"/data", func(c *fiber.Ctx) error {
			username := c.Locals(sessionKeyUsername).(string)
			record, err := users.Get(username)
			if err != nil {
				if _, ok := err.(model.NotFoundError); ok {
					return c.Status(fiber.StatusNotFound).JSON(errorBody("User not found"))
				}
				return c.Status(fiber.StatusInternalServerError).JSON(errorBody(err.Error()))
			}
			// The daily counter is rolled over in the response only; the
			// store is rewritten the next time the client saves, not on
			// read-only traffic.
			state := record.Gamification
			state.Lifetime = state.Lifetime.Rollover(time.Now().Format(dayFormat))
			return c.JSON(
				fiber.Map{
					"gamification_state": state,
					"product_cache":      record.ProductCache,
				},
			)
		},
	)

	r.Post(
		"/data", func(c *fiber.Ctx) error {
			username := c.Locals(sessionKeyUsername).(string)
			var req userDataReq
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(errorBody("Invalid request"))
			}
			if err := users.UpdateState(username, req.Gamification, req.ProductCache); err != nil {
				if _, ok := err.(model.NotFoundError); ok {
					return c.Status(fiber.StatusNotFound).JSON(errorBody("User not found"))
				}
				return c.Status(fiber.StatusInternalServerError).JSON(errorBody(err.Error()))
			}
			return c.JSON(fiber.Map{"status": "success"})
		},
	)
}
