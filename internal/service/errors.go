package service

import "errors"

var (
	ErrInternal = errors.New("internal server error")
	ErrPostNotFound = errors.New("post not found")
	ErrGroupNotFound = errors.New("group not found")
	ErrUserNotFound = errors.New("user not found")
	ErrNotPostAuthor = errors.New("only the author can edit this post")
	ErrPostContentEmpty = errors.New("post content cannot be empty")
	ErrCommentContentEmpty = errors.New("comment content cannot be empty")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
	ErrNothingToUpdate = errors.New("no fields to update")
	ErrFileMustBeImage = errors.New("file must be an image")
	ErrFailedToUploadPostImageToCDN = errors.New("failed to upload post image to CDN")
)
