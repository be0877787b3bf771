package domain

import "time"

// Contact is a directional edge: Owner may talk to Contact.
// The reverse edge is independent and may not exist.
type Contact struct {
	OwnerID   UserID
	ContactID UserID
	CreatedAt time.Time
}

// ContactView is a row of the contact list. Index is positional (1..N) and
// only meaningful inside one listing.
type ContactView struct {
	Index    int        `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	About    string     `json:"about"`
	IsActive bool       `json:"is_active"`
	LastSeen *time.Time `json:"last_seen"`
}

func NewContactView(index int, u User) ContactView {
	return ContactView{
		Index:    index,
		Name:     u.Name,
		Email:    u.Email,
		About:    u.About,
		IsActive: u.IsActive(),
		LastSeen: lastSeen(u),
	}
}
