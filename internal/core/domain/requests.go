package domain

// LoginRequest carries the local-strategy credentials from the login form.
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// RegisterRequest carries the signup form.
type RegisterRequest struct {
	Username string `form:"username" binding:"required,min=3,max=32"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
}

// ListingInput carries the create/edit listing form.
type ListingInput struct {
	Title       string `form:"listing[title]" binding:"required,max=120"`
	Description string `form:"listing[description]" binding:"required"`
	ImageURL    string `form:"listing[image]" binding:"omitempty,url"`
	Price       int    `form:"listing[price]" binding:"min=0,max=2147483647"`
	Location    string `form:"listing[location]" binding:"required"`
	Country     string `form:"listing[country]" binding:"required"`
}

// ReviewInput carries the review form.
type ReviewInput struct {
	Rating  int    `form:"review[rating]" binding:"required,min=1,max=5"`
	Comment string `form:"review[comment]" binding:"required"`
}
