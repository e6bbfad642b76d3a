package utils

import "strconv"

// DeriveUsername builds a username from the email's local part, appending an
// incrementing numeric suffix until taken reports it free.
func DeriveUsername(email string, taken func(string) bool) string {
	base := email
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			base = email[:i]
			break
		}
	}

	username := base
	for counter := 1; taken(username); counter++ {
		username = base + strconv.Itoa(counter)
	}
	return username
}
