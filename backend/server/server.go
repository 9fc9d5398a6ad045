package server

import (
	"flag"
	"fmt"
	"time"

	"citywatch/api"
	"citywatch/backend/auth"
	"citywatch/backend/media"
	"citywatch/backend/problems"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	serverPort = flag.Int("port", 0, "The port used by the service. Overrides PORT when set.")
)

// Handler carries the services the HTTP surface is built on.
type Handler struct {
	auth     *auth.Service
	problems *problems.Service
	media    *media.Storage
}

func NewHandler(a *auth.Service, p *problems.Service, m *media.Storage) *Handler {
	return &Handler{
		auth:     a,
		problems: p,
		media:    m,
	}
}

// Router assembles the gin engine. Split from StartService so tests can
// drive it through httptest.
func (h *Handler) Router(trustedProxies []string) *gin.Engine {
	router := gin.Default()
	router.SetTrustedProxies(trustedProxies)
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET(api.HealthEndpoint, h.Health)
	router.POST(api.LoginEndpoint, h.Login)
	router.POST(api.SignupEndpoint, h.Signup)
	router.GET(api.ProblemsEndpoint, h.ListProblems)
	router.POST(api.ProblemsEndpoint, h.OptionalAuth(), h.CreateProblem)
	router.POST(api.UpvoteEndpoint, h.UpvoteProblem)
	router.POST(api.MapEndpoint, h.GetMap)
	router.POST(api.UploadEndpoint, h.Upload)
	router.Static(api.UploadsPrefix, h.media.Root())

	return router
}

// StartService runs the HTTP server. Blocks until the listener dies.
func (h *Handler) StartService(port string, trustedProxies []string) {
	log.Info("Starting the service...")
	if *serverPort != 0 {
		port = fmt.Sprintf("%d", *serverPort)
	}
	router := h.Router(trustedProxies)
	router.Run(":" + port)
	log.Info("Finished the service. Should not ever being seen.")
}
