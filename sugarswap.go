// Package sugarswap wires the SugarSwap backend: user authentication,
// per-user gamification state persistence and the nutrition database
// product proxy.
package sugarswap

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	log "github.com/sirupsen/logrus"

	"github.com/sugarswap/sugarswap/api/userapi"
	"github.com/sugarswap/sugarswap/product"
	"github.com/sugarswap/sugarswap/storage/model"
)

const defaultSessionCookie = "sugarswap_session"
const defaultSessionLifetime = 24 * time.Hour

// SugarSwap is the backend server. It holds the fiber app, the session
// store and the storage backends; handlers receive these explicitly
// instead of reading ambient globals.
type SugarSwap struct {
	server     *fiber.App
	serverConf ServerConf
	sessions   *session.Store
	storages   model.Backends
	products   *product.Service
}

// FiberServerConfig is the fiber.Config that is used to init the http fiber.App
var FiberServerConfig = fiber.Config{
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   20 * time.Second,
	IdleTimeout:    150 * time.Second,
	ReadBufferSize: 8192,
	ErrorHandler:   handleError,
	Network:        "tcp",
}

// handleError renders unhandled errors with the API's error body shape
func handleError(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		msg = fiberErr.Message
	}
	return ctx.Status(code).JSON(
		fiber.Map{
			"status":  "error",
			"message": msg,
		},
	)
}

// NewSugarSwap creates a new SugarSwap server
func NewSugarSwap(
	serverConf ServerConf,
	sessionConf SessionConf,
	storages model.Backends,
	products *product.Service,
) *SugarSwap {
	if tps := serverConf.TrustedProxies; len(tps) > 0 {
		FiberServerConfig.TrustedProxies = tps
		FiberServerConfig.EnableTrustedProxyCheck = true
	}
	FiberServerConfig.ProxyHeader = serverConf.ForwardedIPHeader
	server := fiber.New(FiberServerConfig)
	server.Use(recover.New())
	server.Use(compress.New())
	server.Use(logger.New())
	server.Use(requestid.New())

	cookieName := sessionConf.CookieName
	if cookieName == "" {
		cookieName = defaultSessionCookie
	}
	lifetime := sessionConf.Lifetime.Duration()
	if lifetime <= 0 {
		lifetime = defaultSessionLifetime
	}
	sessions := session.New(
		session.Config{
			Expiration:     lifetime,
			KeyLookup:      "cookie:" + cookieName,
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
			CookieSecure:   serverConf.TLS.Enabled,
		},
	)

	s := &SugarSwap{
		server:     server,
		serverConf: serverConf,
		sessions:   sessions,
		storages:   storages,
		products:   products,
	}
	userapi.Register(server.Group("/api"), storages, sessions, products)
	if serverConf.WebDir != "" {
		server.Static("/", serverConf.WebDir)
	}
	return s
}

// HttpHandlerFunc returns an http.HandlerFunc for serving all the necessary endpoints
func (s SugarSwap) HttpHandlerFunc() http.HandlerFunc {
	return adaptor.FiberApp(s.server)
}

// Listen starts an http server at the specific address for serving all the
// necessary endpoints
func (s SugarSwap) Listen(addr string) error {
	return s.server.Listen(addr)
}

func (s SugarSwap) Start() {
	conf := s.serverConf
	if !conf.TLS.Enabled {
		log.WithField("port", conf.Port).Info("TLS is disabled starting http server")
		log.WithError(s.server.Listen(fmt.Sprintf("%s:%d", conf.IPListen, conf.Port))).Fatal()
	}
	// TLS enabled
	if conf.TLS.RedirectHTTP {
		httpServer := fiber.New(FiberServerConfig)
		httpServer.All(
			"*", func(ctx *fiber.Ctx) error {
				//goland:noinspection HttpUrlsUsage
				return ctx.Redirect(
					strings.Replace(ctx.Request().URI().String(), "http://", "https://", 1),
					fiber.StatusPermanentRedirect,
				)
			},
		)
		log.Info("TLS and http redirect enabled, starting redirect server on port 80")
		go func() {
			log.WithError(httpServer.Listen(":80")).Fatal()
		}()
	}
	time.Sleep(time.Millisecond) // This is just for a more pretty output with the tls header printed after the http one
	log.Info("TLS enabled, starting https server on port 443")
	log.WithError(s.server.ListenTLS(":443", conf.TLS.Cert, conf.TLS.Key)).Fatal()
}
