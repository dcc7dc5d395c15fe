// Package dto defines data transfer objects for the user feature's HTTP transport layer.
package dto

// CreateUserReq represents the request body for POST /api/v1/users.
// Unknown keys are dropped by the decoder, so only these three fields reach the usecase.
// max_bytes is registered by validation.Init; bcrypt accepts at most 72 bytes.
type CreateUserReq struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max_bytes=72"`
}

// UpdateUserReq represents the request body for PUT/PATCH /api/v1/users/:id.
// A nil field was not sent. A sent field must satisfy the same rules as on create.
type UpdateUserReq struct {
	Name     *string `json:"name" binding:"omitnil,max=255"`
	Email    *string `json:"email" binding:"omitnil,email,max=255"`
	Password *string `json:"password" binding:"omitnil,min=8,max_bytes=72"`
}
