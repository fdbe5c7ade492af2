package models

import "time"

// DefaultCategory is assigned to posts created without a category.
const DefaultCategory = "General"

// AllCategories is the category filter value that disables category filtering.
const AllCategories = "All"

// Post represents a note owned by a single user.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PostInput is the request body for creating or updating a post.
type PostInput struct {
	Title    string   `json:"title" validate:"required,max=100"`
	Content  string   `json:"content" validate:"required,max=10000"`
	Category string   `json:"category" validate:"max=50"`
	Tags     []string `json:"tags" validate:"omitempty,dive,max=30"`
}

// Credentials is the request body for registration and login.
type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
