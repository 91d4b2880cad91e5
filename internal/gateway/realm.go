package gateway

import "context"

// Realm separates the shopper and admin credential pairs. A Client serves
// exactly one realm.
type Realm string

const (
	RealmUser  Realm = "user"
	RealmAdmin Realm = "admin"
)

// LoginPath is the UI route a logged-out session is sent to.
func (r Realm) LoginPath() string {
	if r == RealmAdmin {
		return "/admin/login"
	}
	return "/login"
}

// Navigator is told when a realm's session has been cleared.
type Navigator interface {
	NavigateToLogin(ctx context.Context, realm Realm)
}

type NavigatorFunc func(ctx context.Context, realm Realm)

func (f NavigatorFunc) NavigateToLogin(ctx context.Context, realm Realm) {
	f(ctx, realm)
}

type nopNavigator struct{}

func (nopNavigator) NavigateToLogin(context.Context, Realm) {}
