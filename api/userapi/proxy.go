package userapi

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/sugarswap/sugarswap/product"
)

// registerProductProxy wires the barcode lookup proxy. The endpoint is
// unauthenticated; it only exists so the browser client can reach the
// upstream nutrition database without tripping over CORS.
func registerProductProxy(r fiber.Router, products *product.Service) {
	r.Get(
		"/product/:barcode", func(c *fiber.Ctx) error {
			barcode := c.Params("barcode")
			payload, err := products.FetchAndEnrich(c.UserContext(), barcode)
			if err != nil {
				if _, ok := err.(product.NotFoundError); ok {
					return c.Status(fiber.StatusNotFound).JSON(errorBody("Product not found"))
				}
				log.WithError(err).WithField("barcode", barcode).Error("product proxy request failed")
				return c.Status(fiber.StatusInternalServerError).JSON(errorBody(err.Error()))
			}
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(payload)
		},
	)
}
