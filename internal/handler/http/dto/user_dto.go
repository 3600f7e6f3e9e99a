package dto

// RegisterRequest creates a local account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,containsuppercase,containslowercase,containsdigit,containssymbol"`
}

// LoginRequest authenticates a local account.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest changes the caller's profile. ProfilePicture is a
// media reference in any form the codec accepts.
type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	Bio            *string `json:"bio" binding:"omitempty,max=500"`
	ProfilePicture *string `json:"profilePicture"`
}

// ProfileResponse is a user together with their posts.
type ProfileResponse struct {
	User  UserResponse   `json:"user"`
	Posts []PostResponse `json:"posts"`
}
