package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	svc "github.com/ironclub/gym/internal/services"
)

// GET /payments/report
func PaymentReportForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil {
			http.Redirect(w, r, "/login?next="+r.URL.RequestURI(), http.StatusSeeOther)
			return
		}
		purpose := r.URL.Query().Get("purpose")
		if purpose != "competition" {
			purpose = "membership"
		}

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/payments/report.tmpl")
		_ = view.ExecuteTemplate(w, "payments/report.tmpl", map[string]any{
			"Title":          "Report a Payment",
			"User":           user,
			"Purpose":        purpose,
			"RegistrationID": r.URL.Query().Get("registration_id"),
			"Flash":          MakeFlash(r, "", ""),
		})
	}
}

// POST /payments/report
func PaymentReportSubmit(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	user := currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	amount, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue("amount")), 64)
	in := svc.ReportInput{
		UserID:    user.ID,
		Purpose:   r.FormValue("purpose"),
		Reference: r.FormValue("reference"),
		Method:    r.FormValue("method"),
		Amount:    amount,
		Currency:  r.FormValue("currency"),
	}
	if regID := strings.TrimSpace(r.FormValue("registration_id")); regID != "" {
		in.RegistrationID = &regID
	}

	if _, err := svc.SubmitPaymentReport(in); err != nil {
		http.Redirect(w, r, "/payments/report?error=missing", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/my?ok=payment_reported", http.StatusSeeOther)
}
