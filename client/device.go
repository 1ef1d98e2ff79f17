package client

import "context"

// ImagePicker lets the user choose a photo. ok is false when they cancel.
type ImagePicker interface {
	PickImage(ctx context.Context) (uri string, ok bool, err error)
}

// Locator is the device position source.
type Locator interface {
	RequestPermission(ctx context.Context) (granted bool, err error)
	CurrentPosition(ctx context.Context) (Location, error)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Alert(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Alert(message string) { f(message) }

// FixedLocator always grants permission and reports the same position.
type FixedLocator struct {
	Position Location
}

func (l FixedLocator) RequestPermission(context.Context) (bool, error) { return true, nil }

func (l FixedLocator) CurrentPosition(context.Context) (Location, error) { return l.Position, nil }

// DeniedLocator models a device where location permission was refused.
type DeniedLocator struct{}

func (DeniedLocator) RequestPermission(context.Context) (bool, error) { return false, nil }

func (DeniedLocator) CurrentPosition(context.Context) (Location, error) {
	return Location{}, ErrPermissionDenied
}
