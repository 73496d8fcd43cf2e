package dto

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1"`
}

type GetCommentsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
