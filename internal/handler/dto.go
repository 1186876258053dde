package handler

// APIError is the standardized error response body.
type APIError struct {
	Message string `json:"message"`
}

// NewSessionRequest starts a playthrough of a world.
type NewSessionRequest struct {
	WorldID string `json:"world_id" param:"world_id" validate:"required"`
}

// ActionRequest carries one free-form player command.
type ActionRequest struct {
	Input string `json:"input" validate:"required,max=500"`
}
