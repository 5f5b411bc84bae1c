package engine

import "errors"

var (
	ErrInvalidLevel     = errors.New("invalid level")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrQueueFull        = errors.New("command queue is full")
	ErrQueueLocked      = errors.New("command queue is locked while a run is in progress")
)
