package dto

type RegistrationRequest struct {
	// Optional explicit client identifier; when absent the server derives
	// one from the caller's IP address.
	ClientUID string `json:"client_uid" validate:"omitempty,max=64"`
}

type AccessTokenRequest struct {
	AccessToken string `json:"access_token" validate:"required,uuid4"`
}

type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
}
