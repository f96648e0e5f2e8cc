package web

import (
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironclub/gym/internal/config"
	"github.com/ironclub/gym/internal/handlers"
)

func Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	tmpl := mustParseTemplates("templates")

	// Public pages
	r.Get("/", handlers.Home(tmpl))
	r.Get("/healthz", handlers.Health)
	r.Post("/tg/webhook", handlers.TelegramWebhook)

	// Member auth
	r.Get("/signup", handlers.SignupForm(tmpl))
	r.Post("/signup", handlers.SignupSubmit)
	r.Get("/login", handlers.LoginForm(tmpl))
	r.Post("/login", handlers.LoginSubmit)
	r.Post("/logout", handlers.Logout)

	// Schedule + booking
	r.Get("/schedule", handlers.Schedule(tmpl))
	r.With(handlers.RequireMember).Post("/schedule/{id}/book", handlers.BookSubmit(tmpl))
	r.With(handlers.RequireMember).Post("/schedule/{id}/cancel", handlers.CancelSubmit)

	// "My" page: bookings + competition registrations
	r.With(handlers.RequireMember).Get("/my", handlers.MyPage(tmpl))

	// Competitions
	r.Get("/competitions", handlers.Competitions(tmpl))
	r.Get("/competitions/{id}/register", handlers.CompetitionRegisterForm(tmpl))
	r.With(handlers.RequireMember).Post("/competitions/{id}/register", handlers.CompetitionRegisterSubmit(tmpl))

	// Payment reports
	r.With(handlers.RequireMember).Get("/payments/report", handlers.PaymentReportForm(tmpl))
	r.With(handlers.RequireMember).Post("/payments/report", handlers.PaymentReportSubmit)

	// Account
	r.With(handlers.RequireMember).Get("/account", handlers.AccountForm(tmpl))
	r.With(handlers.RequireMember).Post("/account", handlers.AccountSubmit)
	r.With(handlers.RequireMember).Post("/account/linkcode", handlers.AccountGenerateLinkCode)
	r.With(handlers.RequireMember).Post("/account/unlink_telegram", handlers.AccountUnlinkTelegram)

	// QR image for booking codes
	r.Get("/qr/{code}.png", handlers.QR)

	if config.C.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Front-desk check-in: QR scans land on /checkin, admin auth required
	r.Group(func(ad chi.Router) {
		ad.Use(handlers.RequireAdmin)
		ad.Get("/checkin", handlers.CheckinForm(tmpl))
		ad.Post("/checkin", handlers.CheckinConfirm(tmpl))
	})

	// --- Admin routes (with login + guard) ---
	r.Route("/admin", func(ar chi.Router) {
		ar.Get("/login", handlers.AdminLoginForm(tmpl))
		ar.Post("/login", handlers.AdminLoginSubmit)
		ar.Post("/logout", handlers.AdminLogout)

		ar.Group(func(ag chi.Router) {
			ag.Use(handlers.RequireAdmin)

			ag.Get("/checkin", handlers.CheckinForm(tmpl))
			ag.Post("/checkin", handlers.CheckinConfirm(tmpl))

			// Classes
			ag.Get("/classes", handlers.AdminClasses(tmpl))
			ag.Get("/classes/new", handlers.AdminNewClass(tmpl))
			ag.Post("/classes", handlers.AdminCreateClass)
			ag.Get("/classes/{id}/edit", handlers.AdminEditClassForm(tmpl))
			ag.Post("/classes/{id}", handlers.AdminUpdateClass)
			ag.Post("/classes/{id}/delete", handlers.AdminDeleteClass)

			// Competitions
			ag.Get("/competitions", handlers.AdminCompetitions(tmpl))
			ag.Get("/competitions/new", handlers.AdminNewCompetition(tmpl))
			ag.Post("/competitions", handlers.AdminCreateCompetition)
			ag.Get("/competitions/{id}/edit", handlers.AdminEditCompetitionForm(tmpl))
			ag.Post("/competitions/{id}", handlers.AdminUpdateCompetition)
			ag.Get("/competitions/{id}/registrations", handlers.AdminCompetitionRegistrations(tmpl))
			ag.Get("/competitions/{id}/registrations.csv", handlers.AdminCompetitionRegistrationsCSV)

			// Roster & occupancy
			ag.Get("/roster", handlers.AdminRoster(tmpl))
			ag.Get("/roster.csv", handlers.AdminRosterCSV)
			ag.Get("/occupancy", handlers.AdminOccupancy(tmpl))

			// Payment review queue
			ag.Get("/payments", handlers.AdminPayments(tmpl))
			ag.Post("/payments/{id}/approve", handlers.AdminApprovePayment)
			ag.Post("/payments/{id}/reject", handlers.AdminRejectPayment)

			// Members
			ag.Get("/members", handlers.AdminMembers(tmpl))
		})
	})

	return r
}

func mustParseTemplates(baseDir string) *template.Template {
	loc, err := time.LoadLocation("America/Caracas")
	if err != nil {
		loc = time.FixedZone("VET", -4*3600)
	}

	funcs := template.FuncMap{
		"year":        func() string { return time.Now().Format("2006") },
		"fmtDate":     func(t time.Time) string { return t.In(loc).Format("02-01-2006") },
		"isoDate":     func(t time.Time) string { return t.In(loc).Format("2006-01-02") },
		"isoDatePtr": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.In(loc).Format("2006-01-02")
		},
		"fmtDateTime": func(t time.Time) string { return t.In(loc).Format("Mon, 02 Jan 2006 15:04") },
	}

	p := template.New("").Funcs(funcs)
	p = template.Must(p.ParseGlob(filepath.Join(baseDir, "layouts", "*.tmpl")))
	p = template.Must(p.ParseGlob(filepath.Join(baseDir, "partials", "*.tmpl")))
	return p
}
