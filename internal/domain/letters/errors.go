package letters

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrLetterNotFound     = errors.New("letter not found")
	ErrGeneratorDisabled  = errors.New("remote generation disabled")
	ErrInvalidAttachment  = errors.New("attachment is not valid base64")
	ErrMissingRecipient   = errors.New("employee has no email address")
	ErrLetterTypeRequired = errors.New("letter type is required")
)
