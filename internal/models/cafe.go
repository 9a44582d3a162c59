package models

// CafeInfo is the single public profile document for the café.
type CafeInfo struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Address     string            `json:"address"`
	Phone       string            `json:"phone"`
	Email       string            `json:"email"`
	Hours       map[string]string `json:"hours"`
	SocialMedia map[string]string `json:"social_media"`
}
