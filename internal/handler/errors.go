package handler

import (
	"errors"
	"net/http"

	"github.com/BloggingApp/feed-service/internal/service"
)

var (
	errNotAuthorized = errors.New("user is not authorized")
	errInvalidPostID = errors.New("invalid post ID")
	errLimitAndOffsetMustBeInt = errors.New("limit and offset must be int")
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotPostAuthor):
		return http.StatusForbidden
	case errors.Is(err, service.ErrPostContentEmpty),
		errors.Is(err, service.ErrCommentContentEmpty),
		errors.Is(err, service.ErrNothingToUpdate),
		errors.Is(err, service.ErrFileMustBeImage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
