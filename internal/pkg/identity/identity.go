// Package identity resolves the authenticated subject of a request. The
// subject id is an opaque string owned by the external identity provider.
package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Method string

const (
	MethodSession Method = "session"
	MethodAPIKey  Method = "api_key"
	MethodHeader  Method = "header"
)

// ErrUnauthenticated means the request carries no usable credential. Any
// other resolver error is a failing dependency.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the resolved caller of a request.
type Identity struct {
	SubjectID string
	Method    Method
}

// Resolver extracts an identity from a request.
type Resolver interface {
	Resolve(c *fiber.Ctx) (Identity, error)
}

// Chain tries resolvers in order and returns the first identity found.
type Chain []Resolver

func (ch Chain) Resolve(c *fiber.Ctx) (Identity, error) {
	for _, r := range ch {
		if r == nil {
			continue
		}
		id, err := r.Resolve(c)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrUnauthenticated) {
			return Identity{}, err
		}
	}
	return Identity{}, ErrUnauthenticated
}
