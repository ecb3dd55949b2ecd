package config

// StripQuotes removes one pair of matching quote characters wrapping a value.
// Deployments sometimes quote env values defensively (SMTP_SERVER='smtp.x.y')
// and the quotes survive into the process environment; stripping exactly one
// leading and trailing quote keeps such setups working. Unbalanced or inner
// quotes are left untouched.
func StripQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first != last {
		return s
	}
	if first == '\'' || first == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
