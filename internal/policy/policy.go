// Package policy holds the pure computations that shape externally visible
// export behavior: workspace email handles and temporary passwords.
package policy

import (
	"math/rand"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultDomain is the workspace domain appended to generated handles when a
// deployment does not configure one.
const DefaultDomain = "@developforgood.org"

const alphanumerics = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// EmailPolicy controls how a volunteer's workspace email handle is built.
type EmailPolicy struct {
	UseFirstAndLastName    bool
	AddUniqueNumericSuffix bool
	Separator              string
	// Domain is the fixed suffix, including the leading "@". Empty means
	// DefaultDomain.
	Domain string
}

// PasswordPolicy controls temporary password generation and whether the
// account forces a password change on first login.
type PasswordPolicy struct {
	ChangePasswordAtNextLogin bool
	Length                    int
}

// BuildEmail derives a workspace email address from a volunteer's names.
//
// Both names are lowercased; the handle is either first+separator+last or the
// first name alone. An optional uniformly random two-digit suffix is appended.
// Every character outside [A-Za-z0-9] is then discarded, which also strips a
// non-alphanumeric separator and any spaces inside names ("Minh Uyen" becomes
// "minhuyen"). The suffix is the only source of non-determinism.
func BuildEmail(firstName, lastName string, p EmailPolicy) string {
	first := strings.ToLower(firstName)
	last := strings.ToLower(lastName)

	handle := first
	if p.UseFirstAndLastName {
		handle = first + p.Separator + last
	}

	if p.AddUniqueNumericSuffix {
		handle += strconv.Itoa(10 + rand.Intn(90))
	}

	var b strings.Builder
	b.Grow(len(handle))
	for _, c := range handle {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}

	domain := p.Domain
	if domain == "" {
		domain = DefaultDomain
	}
	return b.String() + domain
}

// GeneratePassword returns a uniformly random alphanumeric string of length
// n. Lengths outside [8, 64] log a warning and fall back to 8 characters.
func GeneratePassword(n int) string {
	if n < 8 || n > 64 {
		log.Warnf("password length must be between 8 and 64 characters, got %d; defaulting to 8", n)
		n = 8
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumerics[rand.Intn(len(alphanumerics))]
	}
	return string(b)
}
