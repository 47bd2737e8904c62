package models

// UserResponse is the public view of a Profile.
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

func NewUserResponse(p *Profile) UserResponse {
	return UserResponse{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.GetDisplayName(),
		AvatarURL:   p.AvatarURL,
	}
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// TagCount is one entry of the tag filter sidebar.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	AI    bool   `json:"ai"` // only seen as an AI tag
}

type CalendarDay struct {
	Date  string `json:"date"` // 2006-01-02
	Notes []Note `json:"notes"`
	Tasks []Task `json:"tasks"`
}

type CalendarMonth struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}
