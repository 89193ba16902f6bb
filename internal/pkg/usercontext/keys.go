package usercontext

// Shared Locals keys used across middlewares and handlers
const (
	KeyUserContext = "USER_CONTEXT"
	KeySubjectID   = "subject_id"
	KeyAuthMethod  = "auth_method"
)
