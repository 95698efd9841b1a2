// Package userapi provides the HTTP surface of the SugarSwap backend:
// authentication, per-user gamification data and the product proxy.
package userapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/sugarswap/sugarswap/product"
	"github.com/sugarswap/sugarswap/storage/model"
)

// Register mounts all API routes under the provided group.
func Register(
	r fiber.Router, storages model.Backends, sessions *session.Store, products *product.Service,
) {
	registerAuth(r.Group("/auth"), storages.Users, sessions)
	registerSession(r.Group("/session"), sessions)
	registerUserData(r.Group("/user"), storages.Users, sessions)
	registerProductProxy(r.Group("/proxy"), products)
}

// errorBody is the JSON error shape shared by all endpoints
func errorBody(message string) fiber.Map {
	return fiber.Map{
		"status":  "error",
		"message": message,
	}
}
