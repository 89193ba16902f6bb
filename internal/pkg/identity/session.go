package identity

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	isession "github.com/ManuelReschke/CreditFox/internal/pkg/session"
)

// SessionResolver reads the subject id the login frontend stored in the
// shared session.
type SessionResolver struct {
	store *session.Store
}

func NewSessionResolver(store *session.Store) *SessionResolver {
	return &SessionResolver{store: store}
}

func (r *SessionResolver) Resolve(c *fiber.Ctx) (Identity, error) {
	sess, err := r.store.Get(c)
	if err != nil {
		return Identity{}, fmt.Errorf("load session: %w", err)
	}
	// Get on an unknown cookie creates a fresh session; never persist it.
	if sess.Fresh() {
		return Identity{}, ErrUnauthenticated
	}
	subject, _ := sess.Get(isession.KeySubjectID).(string)
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{SubjectID: subject, Method: MethodSession}, nil
}
