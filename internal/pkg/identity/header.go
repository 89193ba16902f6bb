package identity

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HeaderResolver trusts a subject id set by an authenticating proxy in front
// of the service. Only enable it when that proxy strips the header from
// client requests.
type HeaderResolver struct {
	header string
}

func NewHeaderResolver(header string) *HeaderResolver {
	return &HeaderResolver{header: header}
}

func (r *HeaderResolver) Resolve(c *fiber.Ctx) (Identity, error) {
	if r.header == "" {
		return Identity{}, ErrUnauthenticated
	}
	subject := strings.TrimSpace(c.Get(r.header))
	if subject == "" {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{SubjectID: subject, Method: MethodHeader}, nil
}
