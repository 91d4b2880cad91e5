package domain

// TokenPair is one realm's credentials. A non-empty AccessToken is the only
// signal of being logged in; expiry is never inspected client-side.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh,omitempty"`
}

func (p TokenPair) Authenticated() bool {
	return p.AccessToken != ""
}

type AuthResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user,omitempty"`
}

func (r AuthResponse) Tokens() TokenPair {
	return TokenPair{AccessToken: r.Access, RefreshToken: r.Refresh}
}
