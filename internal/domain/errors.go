package domain

import "errors"

var (
	// ErrUnauthenticated - действие требует входа.
	ErrUnauthenticated = errors.New("please login")
	// ErrEmptyInput - пустой текст комментария, поста или учетных данных.
	ErrEmptyInput = errors.New("input cannot be empty")
	// ErrCorruptStorage - сохраненное значение не удалось разобрать.
	// Репозитории подставляют значение по умолчанию.
	ErrCorruptStorage = errors.New("corrupt stored value")

	ErrInvalidUsername    = errors.New("username cannot contain spaces")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("not found")
)
