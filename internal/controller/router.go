package controller

import (
	"net/http"

	"bandsync/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Controller собирает HTTP-обработчики поверх сервисного слоя
type Controller struct {
	users        *service.UserService
	groups       *service.GroupService
	availability *service.AvailabilityService
	practices    *service.PracticeService
	calendars    *service.CalendarService
	jwtSecret    string
	logger       *zap.Logger
}

func New(
	users *service.UserService,
	groups *service.GroupService,
	availability *service.AvailabilityService,
	practices *service.PracticeService,
	calendars *service.CalendarService,
	jwtSecret string,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		users:        users,
		groups:       groups,
		availability: availability,
		practices:    practices,
		calendars:    calendars,
		jwtSecret:    jwtSecret,
		logger:       logger,
	}
}

// Router строит маршруты API. Всё под /api требует Bearer-токен,
// кроме /healthz.
func (c *Controller) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(requestLogger(c.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(c.jwtSecret))

		r.Route("/users", func(r chi.Router) {
			r.Post("/sync", c.handleSyncProfile)
			r.Get("/me", c.handleGetMe)
			r.Patch("/me", c.handleUpdateDisplayName)
			r.Delete("/me", c.handleDeleteAccount)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", c.handleListGroups)
			r.Post("/", c.handleCreateGroup)
			r.Post("/join", c.handleJoinGroup)

			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", c.handleGetGroup)
				r.Delete("/", c.handleDeleteGroup)
				r.Post("/leave", c.handleLeaveGroup)
				r.Patch("/window", c.handleUpdateWindow)
				r.Get("/members", c.handleListMembers)
				r.Get("/overview", c.handleOverview)
				r.Get("/month", c.handleMonthSummary)
				r.Get("/heatmap.png", c.handleHeatmap)

				r.Route("/availability", func(r chi.Router) {
					r.Get("/", c.handleListAvailability)
					r.Post("/toggle", c.handleToggleAvailability)
					r.Post("/day", c.handleBulkDayAvailability)
					r.Post("/range", c.handleRangeAvailability)
				})

				r.Route("/practice", func(r chi.Router) {
					r.Get("/", c.handleListPractices)
					r.Get("/runs", c.handlePracticeRuns)
					r.Post("/toggle", c.handleTogglePractice)
					r.Post("/bulk", c.handleBulkPractices)
					r.Delete("/", c.handleClearPractices)
				})
			})
		})

		r.Route("/calendar", func(r chi.Router) {
			r.Post("/sync", c.handleCalendarSync)
			r.Get("/events", c.handleCalendarEvents)
			r.Get("/feeds", c.handleListFeeds)
			r.Post("/feeds", c.handleAddFeed)
			r.Delete("/feeds/{feedID}", c.handleDeleteFeed)
		})
	})

	return r
}
