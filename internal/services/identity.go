package services

import (
	"net/mail"
	"regexp"
	"strings"
)

var (
	reNatID   = regexp.MustCompile(`^[VEJP]-[0-9]{5,10}$`)
	reDigits  = regexp.MustCompile(`^[0-9]{5,10}$`)
	rePhoneOK = regexp.MustCompile(`^[0-9+\-\s\(\)]+$`)
)

// NormNationalID normalizes a national id to the canonical "V-12345678" form.
// Accepts "v12345678", "V 12.345.678", bare digits (V assumed). Returns ""
// when the input cannot be a valid id.
func NormNationalID(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	repl := strings.NewReplacer(" ", "", ".", "", "-", "")
	s = repl.Replace(s)
	if s == "" {
		return ""
	}
	prefix := "V"
	if s[0] == 'V' || s[0] == 'E' || s[0] == 'J' || s[0] == 'P' {
		prefix = string(s[0])
		s = s[1:]
	}
	if !reDigits.MatchString(s) {
		return ""
	}
	out := prefix + "-" + s
	if !reNatID.MatchString(out) {
		return ""
	}
	return out
}

// NormPhone strips separators and keeps a leading +. Local 0-prefixed numbers
// are rewritten to the +58 country code.
func NormPhone(p string) string {
	s := strings.TrimSpace(p)
	if s == "" || !rePhoneOK.MatchString(s) {
		return ""
	}
	repl := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	s = repl.Replace(s)
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	if strings.HasPrefix(s, "0") {
		s = "+58" + s[1:]
	}
	if !strings.HasPrefix(s, "+") {
		s = "+" + s
	}
	return s
}

func NormEmail(s string) (string, bool) {
	e := strings.TrimSpace(strings.ToLower(s))
	if e == "" {
		return "", true // optional
	}
	_, err := mail.ParseAddress(e)
	return e, err == nil
}
