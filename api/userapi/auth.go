package userapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	log "github.com/sirupsen/logrus"

	"github.com/sugarswap/sugarswap/storage/model"
)

// sessionKeyUsername is the session key carrying the authenticated username
const sessionKeyUsername = "username"

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// registerAuth wires the registration, login and logout handlers.
func registerAuth(r fiber.Router, users model.UsersStore, sessions *session.Store) {
	r.Post(
		"/register", func(c *fiber.Ctx) error {
			var req credentialsReq
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(errorBody("Invalid request"))
			}
			if req.Username == "" || req.Password == "" {
				return c.Status(fiber.StatusBadRequest).JSON(errorBody("Username and password are required"))
			}
			if _, err := users.Create(req.Username, req.Password); err != nil {
				if _, ok := err.(model.AlreadyExistsError); ok {
					return c.Status(fiber.StatusConflict).JSON(errorBody("Username already exists"))
				}
				return c.Status(fiber.StatusInternalServerError).JSON(errorBody(err.Error()))
			}
			log.WithField("username", req.Username).Info("new user registered")
			return c.Status(fiber.StatusCreated).JSON(
				fiber.Map{
					"status":  "success",
					"message": "User registered successfully",
				},
			)
		},
	)

	r.Post(
		"/login", func(c *fiber.Ctx) error {
			var req credentialsReq
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(errorBody("Invalid request"))
			}
			if _, err := users.Authenticate(req.Username, req.Password); err != nil {
				// Deliberately generic: do not reveal whether the
				// username or the password was wrong.
				return c.Status(fiber.StatusUnauthorized).JSON(errorBody("Invalid username or password"))
			}
			sess, err := sessions.Get(c)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(errorBody(err.Error()))
			}
			sess.Set(sessionKeyUsername, req.Username)
			if err = sess.Save(); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(errorBody(err.Error()))
			}
			log.WithField("username", req.Username).Info("user logged in")
			return c.JSON(
				fiber.Map{
					"status":   "success",
					"username": req.Username,
				},
			)
		},
	)

	r.Post(
		"/logout", func(c *fiber.Ctx) error {
			sess, err := sessions.Get(c)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(errorBody(err.Error()))
			}
			if username, ok := sess.Get(sessionKeyUsername).(string); ok && username != "" {
				log.WithField("username", username).Info("user logged out")
			}
			if err = sess.Destroy(); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(errorBody(err.Error()))
			}
			return c.JSON(fiber.Map{"status": "success"})
		},
	)
}

// registerSession wires the session check endpoint.
func registerSession(r fiber.Router, sessions *session.Store) {
	r.Get(
		"/check", func(c *fiber.Ctx) error {
			username := sessionUsername(c, sessions)
			if username == "" {
				return c.JSON(fiber.Map{"logged_in": false})
			}
			return c.JSON(
				fiber.Map{
					"logged_in": true,
					"username":  username,
				},
			)
		},
	)
}

// sessionUsername resolves the caller's session to a username; it
// returns the empty string for missing or anonymous sessions.
func sessionUsername(c *fiber.Ctx, sessions *session.Store) string {
	sess, err := sessions.Get(c)
	if err != nil {
		return ""
	}
	username, _ := sess.Get(sessionKeyUsername).(string)
	return username
}

// requireSession gates per-user operations: it resolves a valid session
// to a username and stores it in the request locals, or fails with 401.
// There is never a silent anonymous fallback.
func requireSession(sessions *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := sessionUsername(c, sessions)
		if username == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody("Not logged in"))
		}
		c.Locals(sessionKeyUsername, username)
		return c.Next()
	}
}
