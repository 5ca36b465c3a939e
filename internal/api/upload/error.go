package upload

import "errors"

var (
	ErrTokenNotFound      = errors.New("upload token not found")
	ErrTokenExpired       = errors.New("upload token expired")
	ErrTokenAlreadyUsed   = errors.New("upload token already used")
	ErrInvalidFileType    = errors.New("uploaded file is not an image")
	ErrFileTooLarge       = errors.New("uploaded file exceeds the size limit")
	ErrFailedToUploadFile = errors.New("failed to store uploaded file")
)
