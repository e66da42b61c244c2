package registry

import "modelgw/pkg/types"

// unknownInstanceError signals an id that is not in the registry.
type unknownInstanceError struct{ id string }

func (e unknownInstanceError) Error() string { return "unknown instance: " + e.id }

// IsUnknownInstance reports whether err indicates a missing instance id.
func IsUnknownInstance(err error) bool {
	_, ok := err.(unknownInstanceError)
	return ok
}

// unavailableError signals that an instance's status changed between
// selection and acceptance.
type unavailableError struct{ status types.InstanceStatus }

func (e unavailableError) Error() string { return "Instance is " + string(e.status) }

// IsUnavailable reports whether err indicates a non-healthy instance.
func IsUnavailable(err error) bool {
	_, ok := err.(unavailableError)
	return ok
}

// atCapacityError signals that an instance has no spare load slots.
type atCapacityError struct{}

func (atCapacityError) Error() string { return "Instance at capacity" }

// IsAtCapacity reports whether err indicates a saturated instance.
func IsAtCapacity(err error) bool {
	_, ok := err.(atCapacityError)
	return ok
}
