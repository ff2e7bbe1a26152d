package models

import "time"

// DefaultCredits is granted to every account on first sign-in.
const DefaultCredits = 150

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	ImageURL  string    `json:"imageUrl"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreditTransaction records a completed credits purchase.
type CreditTransaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"createdAt"`
}
