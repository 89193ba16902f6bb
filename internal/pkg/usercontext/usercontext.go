package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the resolved caller of a request
type UserContext struct {
	SubjectID  string `json:"subject_id"`
	AuthMethod string `json:"auth_method"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

// SetUserContext stores the caller on the fiber context
func SetUserContext(c *fiber.Ctx, userCtx UserContext) {
	c.Locals(KeyUserContext, userCtx)
	c.Locals(KeySubjectID, userCtx.SubjectID)
	c.Locals(KeyAuthMethod, userCtx.AuthMethod)
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if userCtx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return userCtx
	}
	return UserContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current caller has a resolved subject
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetSubjectID returns the current subject id, or empty string if anonymous
func GetSubjectID(c *fiber.Ctx) string {
	return GetUserContext(c).SubjectID
}
