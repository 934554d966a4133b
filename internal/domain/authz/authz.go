// Package authz decides what an authenticated actor may do with a reservation
// or listing. Handlers call Actor.Can once, after loading the resource.
package authz

import (
	"strings"

	"tourhub/internal/domain/listings"
	"tourhub/internal/domain/user"
)

type Action string

const (
	ViewBooking         Action = "booking.view"
	ManageBooking       Action = "booking.manage"
	DeleteBooking       Action = "booking.delete"
	CreatePaymentIntent Action = "payment.create_intent"
	ConfirmPayment      Action = "payment.confirm"
	ViewOrder           Action = "order.view"
	ManageOrder         Action = "order.manage"
	DeleteOrder         Action = "order.delete"
	ManageListing       Action = "listing.manage"
)

// Resource carries the ownership facts of the thing being acted on.
type Resource struct {
	CustomerID string
	ProviderID listings.ProviderID
}

type Actor struct {
	ID   string
	Role user.Role
}

// Anonymous is the actor of requests without a bearer token.
var Anonymous = Actor{}

func (a Actor) Authenticated() bool {
	return strings.TrimSpace(a.ID) != ""
}

func (a Actor) IsAdmin() bool    { return a.Role == user.RoleAdmin }
func (a Actor) IsProvider() bool { return a.Role == user.RoleProvider }
func (a Actor) IsCustomer() bool { return a.Role == user.RoleCustomer }

func (a Actor) Can(action Action, res Resource) bool {
	if !a.Authenticated() {
		return false
	}
	if a.IsAdmin() {
		return true
	}
	customer := res.CustomerID != "" && res.CustomerID == a.ID
	provider := a.IsProvider() && res.ProviderID != "" && string(res.ProviderID) == a.ID

	switch action {
	case ViewBooking, ViewOrder, DeleteBooking, DeleteOrder:
		return customer || provider
	case CreatePaymentIntent, ConfirmPayment:
		return customer
	case ManageBooking, ManageOrder, ManageListing:
		return provider
	}
	return false
}
