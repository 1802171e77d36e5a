package auth

import "fmt"

// Credential is an identity used to authenticate against a database.
// A credential flagged Admin authenticates against the admin database
// and grants server-wide access.
type Credential struct {
	Username string
	Password string
	// Source is the database the credential is defined on. Empty means
	// the credential is the scope-wide default.
	Source string
	Admin  bool
}

// Key gets the logical identity of the credential. Two credentials with
// equal keys are interchangeable for authentication purposes; the
// password is deliberately not part of the identity.
func (c *Credential) Key() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%s@%s?admin=%t", c.Username, c.Source, c.Admin)
}

// Equal indicates whether two credentials have the same logical identity.
func (c *Credential) Equal(other *Credential) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Key() == other.Key()
}

// NewScope creates a Scope from the given credentials. Each credential
// is classified exactly once, at construction: admin-flagged credentials
// fill the administrative slot, credentials naming a source database are
// scoped to that database, and a credential with no source becomes the
// scope-wide default.
func NewScope(creds ...Credential) *Scope {
	s := &Scope{named: make(map[string]*Credential)}
	for i := range creds {
		cred := creds[i]
		switch {
		case cred.Admin:
			s.admin = &cred
		case cred.Source != "":
			s.named[cred.Source] = &cred
		default:
			s.fallback = &cred
		}
	}
	return s
}

// Scope holds the credentials configured for a server target: zero or
// more database-scoped credentials, an optional scope-wide default and
// an optional administrative credential.
type Scope struct {
	admin    *Credential
	fallback *Credential
	named    map[string]*Credential
}

// Admin gets the administrative credential, if any.
func (s *Scope) Admin() *Credential {
	if s == nil {
		return nil
	}
	return s.admin
}

// Default gets the scope-wide non-admin credential, if any.
func (s *Scope) Default() *Credential {
	if s == nil {
		return nil
	}
	return s.fallback
}

// Lookup resolves the credential to use for the named database. A
// database-scoped credential wins over the scope-wide default. Lookup
// returns nil when the scope holds nothing applicable.
func (s *Scope) Lookup(db string) *Credential {
	if s == nil {
		return nil
	}
	if cred, ok := s.named[db]; ok {
		return cred
	}
	if db == "admin" && s.admin != nil {
		return s.admin
	}
	return s.fallback
}
