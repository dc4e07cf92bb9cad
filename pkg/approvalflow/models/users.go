package models

type UserView struct {
	UserSummary
	Enabled bool   `json:"enabled"`
	Created string `json:"created,omitempty"`
	HasKey  bool   `json:"hasApiKey"`
}

type CreateUserRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// UpdateUserRequest changes only the fields that are present.
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Role      *string `json:"role,omitempty"`
	Enabled   *bool   `json:"enabled,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// ApiKeyResponse carries a freshly generated key, it is only ever shown once.
type ApiKeyResponse struct {
	ApiKey string `json:"apiKey"`
}
