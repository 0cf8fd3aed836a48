package auth

import (
	"fmt"

	"github.com/go-ldap/ldap/v3"
)

// LDAPVerifier checks credentials against the campus directory by binding as
// the user. Used when AUTH_BACKEND=ldap; profile records are still local,
// only the password check is delegated.
type LDAPVerifier struct {
	addr          string
	baseDN        string
	userAttribute string
}

func NewLDAPVerifier(addr, baseDN, userAttribute string) *LDAPVerifier {
	return &LDAPVerifier{
		addr:          addr,
		baseDN:        baseDN,
		userAttribute: userAttribute,
	}
}

// Verify attempts a bind with the user's DN and password. A failed bind is a
// failed credential check; any other failure is a directory error.
func (v *LDAPVerifier) Verify(username, password string) error {
	conn, err := ldap.DialURL(v.addr)
	if err != nil {
		return fmt.Errorf("failed to reach campus directory: %w", err)
	}
	defer conn.Close()

	userDN := fmt.Sprintf("%s=%s,%s", v.userAttribute, ldap.EscapeDN(username), v.baseDN)
	if err := conn.Bind(userDN, password); err != nil {
		return fmt.Errorf("directory bind failed for %s: %w", username, err)
	}

	return nil
}
