package cmd

import (
	"net/http"

	"tripshare-backend/internal/handlers"
	"tripshare-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type routes struct {
	auth        *handlers.AuthHandler
	profiles    *handlers.ProfileHandler
	trips       *handlers.TripHandler
	invitations *handlers.InvitationHandler
	activities  *handlers.ActivityHandler
	ideas       *handlers.IdeaHandler
	expenses    *handlers.ExpenseHandler
	photos      *handlers.PhotoHandler
	posts       *handlers.PostHandler
	admin       *handlers.AdminHandler
	enrich      *handlers.EnrichHandler
	ws          *handlers.WebSocketHandler
	authn       middleware.Authenticator
}

func newRouter(h routes, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware(allowedOrigin))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", h.auth.SignUp)
		r.Post("/auth/signin", h.auth.SignIn)
		r.Post("/auth/password-reset", h.auth.RequestPasswordReset)
		r.Post("/auth/password-reset/confirm", h.auth.ConfirmPasswordReset)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(h.authn))

			r.Post("/auth/signout", h.auth.SignOut)

			r.Get("/profiles/me", h.profiles.GetMe)
			r.Patch("/profiles/me", h.profiles.UpdateMe)
			r.Post("/profiles/me/avatar", h.profiles.PresignAvatar)
			r.Get("/profiles/{id}", h.profiles.GetProfile)

			r.Get("/guides", h.trips.ListGuides)
			r.Post("/trips", h.trips.CreateTrip)
			r.Get("/trips", h.trips.ListTrips)
			r.Route("/trips/{trip_id}", func(r chi.Router) {
				r.Get("/", h.trips.GetTrip)
				r.Patch("/", h.trips.UpdateTrip)
				r.Delete("/", h.trips.DeleteTrip)
				r.Post("/share", h.trips.ShareTrip)
				r.Get("/members", h.trips.ListMembers)
				r.Delete("/members/{user_id}", h.trips.RemoveMember)
				r.Get("/activity-log", h.trips.ActivityLog)

				r.Post("/invitations", h.invitations.CreateInvitation)

				r.Get("/activities", h.activities.ListActivities)
				r.Post("/activities", h.activities.CreateActivity)
				r.Post("/activities/reorder", h.activities.ReorderActivities)
				r.Patch("/activities/{activity_id}", h.activities.UpdateActivity)
				r.Delete("/activities/{activity_id}", h.activities.DeleteActivity)

				r.Get("/ideas", h.ideas.ListIdeas)
				r.Post("/ideas", h.ideas.CreateIdea)
				r.Patch("/ideas/{idea_id}", h.ideas.UpdateIdea)
				r.Delete("/ideas/{idea_id}", h.ideas.DeleteIdea)
				r.Post("/ideas/{idea_id}/promote", h.ideas.PromoteIdea)

				r.Get("/expenses", h.expenses.ListExpenses)
				r.Post("/expenses", h.expenses.CreateExpense)
				r.Patch("/expenses/{expense_id}", h.expenses.UpdateExpense)
				r.Delete("/expenses/{expense_id}", h.expenses.DeleteExpense)
				r.Get("/settlements", h.expenses.ListSettlements)
				r.Post("/settlements", h.expenses.RecordSettlement)
				r.Get("/balances", h.expenses.GetBalances)

				r.Post("/photos/upload", h.photos.GetUploadURL)
				r.Get("/photos", h.photos.ListPhotos)
				r.Post("/photos/{photo_id}/confirm", h.photos.ConfirmUpload)
				r.Delete("/photos/{photo_id}", h.photos.DeletePhoto)
			})

			r.Get("/invitations", h.invitations.ListInvitations)
			r.Post("/invitations/{id}/accept", h.invitations.AcceptInvitation)
			r.Post("/invitations/{id}/decline", h.invitations.DeclineInvitation)
			r.Delete("/invitations/{id}", h.invitations.CancelInvitation)

			r.Get("/feed", h.posts.Feed)
			r.Get("/bookmarks", h.posts.Bookmarks)
			r.Post("/posts", h.posts.CreatePost)
			r.Get("/posts/{id}", h.posts.GetPost)
			r.Delete("/posts/{id}", h.posts.DeletePost)
			r.Post("/posts/{id}/images", h.posts.PresignImage)
			r.Post("/posts/{id}/like", h.posts.ToggleLike)
			r.Post("/posts/{id}/bookmark", h.posts.ToggleBookmark)
			r.Get("/posts/{id}/comments", h.posts.ListComments)
			r.Post("/posts/{id}/comments", h.posts.AddComment)
			r.Delete("/comments/{id}", h.posts.DeleteComment)

			r.Get("/recommendations", h.enrich.Recommendations)
			r.Get("/places/search", h.enrich.SearchPlaces)
			r.Get("/places/nearby", h.enrich.NearbyPlaces)
			r.Get("/places/{place_id}", h.enrich.PlaceDetails)
			r.Get("/weather", h.enrich.Weather)
			r.Get("/images/search", h.enrich.SearchImages)
			r.Get("/link-preview", h.enrich.LinkPreview)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/analytics", h.admin.Analytics)
				r.Post("/users/{id}/ban", h.admin.BanUser)
				r.Delete("/posts/{id}", h.admin.DeletePost)
			})
		})
	})

	// WebSocket route
	r.Get("/ws", h.ws.HandleWebSocket)

	return r
}
