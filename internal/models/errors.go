package models

import (
	"errors"
	"fmt"
)

// Base error taxonomy. Every specific error below wraps one of these, so
// callers can match either the precise condition or the whole class with
// errors.Is.
var ErrNotFound = errors.New("requested resource not found")
var ErrConflict = errors.New("resource conflict, item already exists")
var ErrPrecondition = errors.New("operation precondition not met")
var ErrForbidden = errors.New("user does not have permission to access this resource")

var (
	ErrCartPublished       = fmt.Errorf("%w: cart is already published", ErrConflict)
	ErrItemNotInCart       = fmt.Errorf("%w: item is not in the cart", ErrPrecondition)
	ErrApplicationOpen     = fmt.Errorf("%w: a promotion application is already open", ErrConflict)
	ErrRoleUnchanged       = fmt.Errorf("%w: user already holds this role", ErrConflict)
	ErrSameShiftState      = fmt.Errorf("%w: shift state unchanged since last check-in", ErrConflict)
	ErrOwnerHasRestaurant  = fmt.Errorf("%w: owner already runs a restaurant", ErrConflict)
	ErrRestaurantNameTaken = fmt.Errorf("%w: restaurant name is already taken", ErrConflict)
	ErrLocationNameTaken   = fmt.Errorf("%w: location name is already in use", ErrConflict)
	ErrStatusOutOfOrder    = fmt.Errorf("%w: order status may only advance one step forward", ErrPrecondition)
	ErrNotPromotable       = fmt.Errorf("%w: role cannot be requested through promotion", ErrPrecondition)
)
