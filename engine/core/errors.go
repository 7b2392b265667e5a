package core

import (
	"errors"
)

var (
	ErrSwapchainBooting  = errors.New("swapchain resized or recreated, booting")
	ErrEmptyGeometry     = errors.New("geometry has no vertices or indices")
	ErrUnknownPrimitive  = errors.New("unknown primitive")
	ErrFrameInProgress   = errors.New("a frame or command scope is already open")
	ErrNoFrameInProgress = errors.New("no frame or command scope is open")
	ErrSlotOutOfRange    = errors.New("constant buffer slot out of range")
	ErrInvalidBuffer     = errors.New("invalid or released render buffer")
	ErrBackendNotReady   = errors.New("renderer backend not initialized")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidIdentifier = errors.New("identifier out of range")
	ErrAssetNotFound     = errors.New("asset not found")
	ErrUnknown           = errors.New("unknown")
)
