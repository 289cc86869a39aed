package router

import (
	"net/http"

	"github.com/antojo-app/api/internal/config"
	"github.com/antojo-app/api/internal/database"
	"github.com/antojo-app/api/internal/handler"
	"github.com/antojo-app/api/internal/service"
	"github.com/antojo-app/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route for live order boards
	r.Get("/ws/restaurants/{rid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	// Restaurant catalog
	restaurantHandler := handler.NewRestaurantHandler(queries)
	r.Route("/restaurants", func(r chi.Router) {
		restaurantHandler.RegisterRoutes(r)

		r.Route("/{rid}", func(r chi.Router) {
			// Menu articles
			articleHandler := handler.NewArticleHandler(queries)
			r.Route("/articles", articleHandler.RegisterRoutes)

			// Reviews
			reviewHandler := handler.NewReviewHandler(queries)
			r.Route("/reviews", reviewHandler.RegisterRoutes)

			// Orders
			newOrderStore := func(db database.DBTX) service.OrderStore {
				return database.New(db)
			}
			orderService := service.NewOrderService(pool, newOrderStore)
			orderHandler := handler.NewOrderHandler(orderService, queries, hub)
			r.Route("/orders", orderHandler.RegisterRoutes)
		})
	})

	// Users and their favorites
	userHandler := handler.NewUserHandler(queries)
	r.Route("/users", func(r chi.Router) {
		userHandler.RegisterRoutes(r)

		favoriteHandler := handler.NewFavoriteHandler(queries)
		r.Route("/{uid}/favorites", favoriteHandler.RegisterRoutes)
	})

	return r
}
