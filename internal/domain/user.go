package domain

type User struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username,omitempty"`
	FullName   string `json:"full_name,omitempty"`
	UserAge    *int   `json:"user_age,omitempty"`
	UserGender string `json:"user_gender,omitempty"`
}

type RegisterRequest struct {
	FullName   string `json:"full_name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	UserAge    *int   `json:"user_age,omitempty"`
	UserGender string `json:"user_gender,omitempty"`
	Password   string `json:"password"`
}

type ProfileUpdate struct {
	FullName   *string `json:"full_name,omitempty"`
	UserAge    *int    `json:"user_age,omitempty"`
	UserGender *string `json:"user_gender,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
