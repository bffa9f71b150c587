package commerce

import (
	"strings"

	"github.com/google/uuid"
)

// Owner identifies whose cart is being touched: a signed-in user or an anonymous session.
type Owner struct {
	UserID    uuid.UUID
	SessionID string
}

func UserOwner(id uuid.UUID) Owner { return Owner{UserID: id} }

func SessionOwner(sessionID string) Owner { return Owner{SessionID: strings.TrimSpace(sessionID)} }

func (o Owner) IsUser() bool { return o.UserID != uuid.Nil }

func (o Owner) Valid() bool { return o.IsUser() || o.SessionID != "" }

// Key is the unique cart owner key persisted on carts.owner_key.
func (o Owner) Key() string {
	switch {
	case o.IsUser():
		return "user:" + o.UserID.String()
	case o.SessionID != "":
		return "session:" + o.SessionID
	default:
		return ""
	}
}
