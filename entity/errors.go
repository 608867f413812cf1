package entity

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrOutOfStock = errors.New("not enough stock")
)
