package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusshelf/campusshelf-backend/api/controllers"
	"github.com/campusshelf/campusshelf-backend/api/middleware"
	"github.com/campusshelf/campusshelf-backend/internal/cart"
	"github.com/campusshelf/campusshelf-backend/internal/chat"
	"github.com/campusshelf/campusshelf-backend/internal/contact"
	"github.com/campusshelf/campusshelf-backend/internal/listings"
	"github.com/campusshelf/campusshelf-backend/internal/moderation"
	"github.com/campusshelf/campusshelf-backend/internal/orders"
	"github.com/campusshelf/campusshelf-backend/internal/reviews"
	"github.com/campusshelf/campusshelf-backend/internal/wishlist"
	"github.com/campusshelf/campusshelf-backend/pkg/auth/session"
	"github.com/campusshelf/campusshelf-backend/pkg/config"
	"github.com/campusshelf/campusshelf-backend/pkg/db"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	"github.com/campusshelf/campusshelf-backend/pkg/logger"
	"github.com/campusshelf/campusshelf-backend/pkg/metrics"
	pkgredis "github.com/campusshelf/campusshelf-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Listings   listings.Service
	Cart       cart.Service
	Orders     orders.Service
	Chat       chat.Service
	Wishlist   wishlist.Service
	Reviews    reviews.Service
	Moderation moderation.Service
	Contact    contact.Service
}

// NewRouter assembles the full HTTP surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	sessions session.Checker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(httpMetrics),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	// Browse surfaces stay public; identity only widens what is visible.
	r.Route("/api/v1/books", func(r chi.Router) {
		r.Get("/", controllers.BooksList(svcs.Listings, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Get("/mine", controllers.BooksMine(svcs.Listings, logg))
			r.Post("/", controllers.BooksCreate(svcs.Listings, logg))
			r.Put("/{bookId}", controllers.BooksUpdate(svcs.Listings, logg))
			r.Post("/{bookId}/reviews", controllers.ReviewsCreate(svcs.Reviews, logg))
		})

		// sellers see their own pending/rejected/sold listings here when
		// they send a token, so the detail read resolves identity if present
		r.With(middleware.AuthOptional(cfg.JWT, sessions, logg)).
			Get("/{bookId}", controllers.BooksGet(svcs.Listings, logg))
		r.Get("/{bookId}/reviews", controllers.ReviewsList(svcs.Reviews, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(svcs.Cart, logg))
			r.Post("/", controllers.CartAdd(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
			r.Put("/{itemId}", controllers.CartSetQuantity(svcs.Cart, logg))
			r.Delete("/{itemId}", controllers.CartRemove(svcs.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(svcs.Orders, logg))
			r.Post("/", controllers.OrdersCheckout(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrdersGet(svcs.Orders, logg))
			r.Put("/{orderId}", controllers.OrdersTransition(svcs.Orders, logg))
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/", controllers.ChatList(svcs.Chat, logg))
			r.Post("/", controllers.ChatOpen(svcs.Chat, logg))
			r.Get("/{conversationId}", controllers.ChatMessages(svcs.Chat, logg))
			r.Post("/{conversationId}", controllers.ChatSend(svcs.Chat, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(svcs.Wishlist, logg))
			r.Post("/", controllers.WishlistAdd(svcs.Wishlist, logg))
			r.Delete("/{bookId}", controllers.WishlistRemove(svcs.Wishlist, logg))
		})

		r.Route("/contact", func(r chi.Router) {
			r.Post("/", controllers.ContactCreate(svcs.Contact, logg))

			// the queue itself is moderator territory
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleModerator), logg))
				r.Get("/", controllers.ContactList(svcs.Contact, logg))
				r.Put("/{contactId}", controllers.ContactResolve(svcs.Contact, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleModerator), logg))

			r.Get("/books", controllers.AdminBooksList(svcs.Moderation, logg))
			r.Put("/books/{bookId}", controllers.AdminBooksModerate(svcs.Moderation, logg))
			r.Delete("/books/{bookId}", controllers.AdminBooksDelete(svcs.Moderation, logg))
			r.Get("/stats", controllers.AdminStats(svcs.Moderation, logg))
		})
	})

	return r
}
