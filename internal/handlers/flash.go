package handlers

import (
	"net/http"
	"strings"
)

type Flash struct {
	Kind string // "ok" or "error"
	Text string
}

var okText = map[string]string{
	"saved":            "Saved.",
	"booked":           "Booking confirmed.",
	"canceled":         "Booking canceled.",
	"registered":       "Registration completed.",
	"checked_in":       "Checked in.",
	"payment_reported": "Payment reported. We'll verify it shortly.",
	"approved":         "Payment approved.",
	"rejected":         "Payment rejected.",
	"linked":           "Telegram linked.",
	"class_created":    "Class created.",
	"class_deleted":    "Class deleted.",
	"comp_created":     "Competition created.",
}

var errText = map[string]string{
	"missing":           "Required fields are missing.",
	"invalid_email":     "Invalid email address.",
	"email_in_use":      "That email is already used by another account.",
	"natid_in_use":      "That national id is already used by another account.",
	"invalid_natid":     "Invalid national id.",
	"invalid_login":     "Wrong email or password.",
	"class_not_found":   "Class not found.",
	"class_full":        "That class is full.",
	"already_booked":    "You are already booked for that class.",
	"comp_not_found":    "Competition not found.",
	"comp_full":         "That competition is full.",
	"invalid_code":      "Invalid or missing code.",
	"code_not_found":    "Code not found.",
	"already_checkedin": "Already checked in.",
	"has_attendees":     "Cannot delete: the class still has booked attendees. Cancel them first.",
	"report_reviewed":   "That payment report was already reviewed.",
}

// MakeFlash reads ?ok= / ?error= query params (falling back to explicit
// strings) and builds a Flash. Unknown keys are shown verbatim, which is how
// attributable registration errors reach the user.
func MakeFlash(r *http.Request, errStr, msgStr string) *Flash {
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("error")); raw != "" {
		if t, ok := errText[strings.ToLower(raw)]; ok {
			return &Flash{Kind: "error", Text: t}
		}
		return &Flash{Kind: "error", Text: raw}
	}
	if raw := strings.TrimSpace(q.Get("ok")); raw != "" {
		if t, ok := okText[strings.ToLower(raw)]; ok {
			return &Flash{Kind: "ok", Text: t}
		}
		return &Flash{Kind: "ok", Text: raw}
	}

	if errStr != "" {
		return &Flash{Kind: "error", Text: errStr}
	}
	if msgStr != "" {
		return &Flash{Kind: "ok", Text: msgStr}
	}
	return nil
}
