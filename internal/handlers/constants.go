package handlers

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrAdminOnly           = "Admin session required"
	ErrInternalServerError = "Internal server error"
	ErrMethodNotAllowed    = "Method not allowed"
)
