package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/metrics"
	"github.com/ironclub/gym/internal/models"
	"github.com/ironclub/gym/internal/notify"
	svc "github.com/ironclub/gym/internal/services"
)

type paymentQueueRow struct {
	ID          uint
	CreatedStr  string
	MemberName  string
	MemberEmail string
	Purpose     string
	Reference   string
	Method      string
	Amount      float64
	Currency    string
	Status      string
}

// GET /admin/payments
func AdminPayments(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		switch status {
		case "approved", "rejected", "all":
		default:
			status = "pending"
		}

		q := db.Conn().Table("payment_reports").
			Select(`payment_reports.id, payment_reports.created_at, payment_reports.purpose,
			        payment_reports.reference, payment_reports.method, payment_reports.amount,
			        payment_reports.currency, payment_reports.status,
			        users.name as member_name, users.email as member_email`).
			Joins("JOIN users ON users.id = payment_reports.user_id").
			Order("payment_reports.created_at asc")
		if status != "all" {
			q = q.Where("payment_reports.status = ?", status)
		}

		type join struct {
			models.PaymentReport
			MemberName  string
			MemberEmail string
		}
		var joins []join
		q.Scan(&joins)

		rows := make([]paymentQueueRow, 0, len(joins))
		for _, j := range joins {
			rows = append(rows, paymentQueueRow{
				ID:          j.ID,
				CreatedStr:  fmtDateTime(j.CreatedAt),
				MemberName:  j.MemberName,
				MemberEmail: j.MemberEmail,
				Purpose:     j.Purpose,
				Reference:   j.Reference,
				Method:      j.Method,
				Amount:      j.Amount,
				Currency:    j.Currency,
				Status:      j.Status,
			})
		}

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/admin/payments.tmpl")
		_ = view.ExecuteTemplate(w, "admin/payments.tmpl", map[string]any{
			"Title":  "Admin • Payments",
			"Rows":   rows,
			"Status": status,
			"Flash":  MakeFlash(r, "", ""),
		})
	}
}

func reviewPayment(w http.ResponseWriter, r *http.Request, approve bool) {
	admin := currentUser(r)
	if admin == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	if err := svc.ReviewPaymentReport(uint(id), admin.ID, approve); err != nil {
		switch {
		case errors.Is(err, svc.ErrAlreadyReviewed):
			http.Redirect(w, r, "/admin/payments?error=report_reviewed", http.StatusSeeOther)
		case errors.Is(err, svc.ErrReportNotFound):
			http.Redirect(w, r, "/admin/payments?error=code_not_found", http.StatusSeeOther)
		default:
			http.Error(w, "review failed", http.StatusInternalServerError)
		}
		return
	}

	outcome := "rejected"
	okKey := "rejected"
	if approve {
		outcome = "approved"
		okKey = "approved"
	}
	metrics.PaymentReviews.WithLabelValues(outcome).Inc()

	var report models.PaymentReport
	if err := db.Conn().First(&report, id).Error; err == nil {
		var member models.User
		if err := db.Conn().First(&member, report.UserID).Error; err == nil {
			notify.PaymentReviewed(member.TelegramChatID, approve)
		}
	}
	http.Redirect(w, r, "/admin/payments?ok="+okKey, http.StatusSeeOther)
}

// POST /admin/payments/{id}/approve
func AdminApprovePayment(w http.ResponseWriter, r *http.Request) {
	reviewPayment(w, r, true)
}

// POST /admin/payments/{id}/reject
func AdminRejectPayment(w http.ResponseWriter, r *http.Request) {
	reviewPayment(w, r, false)
}
