package dto

type CreatePostRequest struct {
	Content  string  `json:"content" binding:"required,min=1"`
	GroupID  *int64  `json:"group_id"`
	ImageURL *string `json:"image_url"`
}

type EditPostRequest struct {
	ID       int64   `json:"id" binding:"required"`
	Content  *string `json:"content"`
	GroupID  *int64  `json:"group_id"`
	ImageURL *string `json:"image_url"`
}
