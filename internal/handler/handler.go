// Package handler exposes the back-office REST API. Each entity gets a
// file with its routes; shared plumbing (responses, error mapping,
// bearer auth) lives in respond.go and security.go.
package handler

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/merchkit/backoffice/internal/auth"
	"github.com/merchkit/backoffice/internal/domain/catalog"
	"github.com/merchkit/backoffice/internal/domain/contact"
	"github.com/merchkit/backoffice/internal/domain/coupon"
	"github.com/merchkit/backoffice/internal/domain/media"
	"github.com/merchkit/backoffice/internal/domain/order"
	"github.com/merchkit/backoffice/internal/domain/review"
	"github.com/merchkit/backoffice/internal/domain/settings"
	"github.com/merchkit/backoffice/internal/domain/user"
)

// timeNow is swapped in tests.
var timeNow = time.Now

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. When empty, paths are returned as stored.
	ImageBaseURL string
}

// Handler serves the REST API, delegating business logic to the domain
// services and repositories.
type Handler struct {
	tokens       *auth.Issuer
	users        user.Repository
	products     catalog.ProductRepository
	categories   catalog.CategoryRepository
	coupons      coupon.Repository
	orders       *order.Service
	orderList    order.Repository
	reviews      review.Repository
	contacts     contact.Repository
	mediaStore   media.Repository
	mediaHost    media.Host
	settings     settings.Repository
	imageBaseURL string
}

// Deps are the collaborators a Handler needs.
type Deps struct {
	Tokens     *auth.Issuer
	Users      user.Repository
	Products   catalog.ProductRepository
	Categories catalog.CategoryRepository
	Coupons    coupon.Repository
	Orders     *order.Service
	OrderList  order.Repository
	Reviews    review.Repository
	Contacts   contact.Repository
	MediaStore media.Repository
	MediaHost  media.Host
	Settings   settings.Repository
}

// New constructs a Handler.
func New(cfg Config, deps Deps) *Handler {
	return &Handler{
		tokens:       deps.Tokens,
		users:        deps.Users,
		products:     deps.Products,
		categories:   deps.Categories,
		coupons:      deps.Coupons,
		orders:       deps.Orders,
		orderList:    deps.OrderList,
		reviews:      deps.Reviews,
		contacts:     deps.Contacts,
		mediaStore:   deps.MediaStore,
		mediaHost:    deps.MediaHost,
		settings:     deps.Settings,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes builds the API router. Reads on the storefront surface
// (products, categories) are public; everything mutating requires a
// bearer token.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Post("/register", h.register)
		r.Get("/verify", h.verifyToken)
		r.With(h.authenticate).Get("/me", h.me)
	})

	r.With(h.authenticate).Route("/profile", func(r chi.Router) {
		r.Get("/", h.getProfile)
		r.Put("/", h.updateProfile)
		r.Put("/password", h.changePassword)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
		r.Group(func(r chi.Router) {
			r.Use(h.authenticate, h.requireStaff)
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Get("/{id}", h.getCategory)
		r.Group(func(r chi.Router) {
			r.Use(h.authenticate, h.requireStaff)
			r.Post("/", h.createCategory)
			r.Put("/{id}", h.updateCategory)
			r.Delete("/{id}", h.deleteCategory)
		})
	})

	r.Route("/coupons", func(r chi.Router) {
		r.Use(h.authenticate, h.requireStaff)
		r.Get("/", h.listCoupons)
		r.Post("/", h.createCoupon)
		r.Get("/{code}", h.getCoupon)
		r.Put("/{code}", h.updateCoupon)
		r.Delete("/{code}", h.deleteCoupon)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/{id}", h.getOrder)
		r.With(h.requireStaff).Patch("/{id}/status", h.updateOrderStatus)
		r.With(h.requireStaff).Patch("/{id}/payment", h.updateOrderPayment)
		r.With(h.requireStaff).Delete("/{id}", h.deleteOrder)
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.listReviews)
		r.With(h.authenticate).Post("/", h.createReview)
		r.Group(func(r chi.Router) {
			r.Use(h.authenticate, h.requireStaff)
			r.Get("/{id}", h.getReview)
			r.Patch("/{id}/approve", h.approveReview)
			r.Patch("/{id}/reply", h.replyReview)
			r.Delete("/{id}", h.deleteReview)
		})
	})

	r.Route("/contacts", func(r chi.Router) {
		r.Post("/", h.createContact)
		r.Group(func(r chi.Router) {
			r.Use(h.authenticate, h.requireStaff)
			r.Get("/", h.listContacts)
			r.Get("/{id}", h.getContact)
			r.Patch("/{id}/status", h.updateContactStatus)
			r.Patch("/{id}/important", h.updateContactImportant)
			r.Patch("/{id}/reply", h.replyContact)
			r.Delete("/{id}", h.deleteContact)
		})
	})

	r.Route("/media", func(r chi.Router) {
		r.Use(h.authenticate, h.requireStaff)
		r.Get("/", h.listMedia)
		r.Post("/upload", h.uploadMedia)
		r.Get("/{id}", h.getMedia)
		r.Delete("/{id}", h.deleteMedia)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(h.authenticate, h.requireAdmin)
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Get("/{id}", h.getUser)
		r.Put("/{id}", h.updateUser)
		r.Delete("/{id}", h.deleteUser)
	})

	r.Route("/settings", func(r chi.Router) {
		r.Use(h.authenticate, h.requireAdmin)
		r.Get("/", h.getSettings)
		r.Put("/", h.putSettings)
	})

	return r
}
