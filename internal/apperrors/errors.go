package apperrors

import "fmt"

// NotFoundError reports an unknown entity id or lookup code.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func NewCampaignNotFound(id int) error {
	return &NotFoundError{Resource: "campaign", ID: id}
}

func NewEventNotFound(id int) error {
	return &NotFoundError{Resource: "event", ID: id}
}

func NewTicketNotFound(code string) error {
	return &NotFoundError{Resource: "ticket", ID: code}
}

// ValidationError reports a missing or malformed request field. Nothing is
// mutated when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidStateError reports an operation attempted against an entity whose
// lifecycle state forbids it (editing a sent campaign, dispatching with no
// recipients, checking in a used ticket).
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return e.Reason
}

func NewInvalidState(reason string) error {
	return &InvalidStateError{Reason: reason}
}

func NewAlreadySent(id int) error {
	return &InvalidStateError{Reason: fmt.Sprintf("campaign %d has already been sent", id)}
}

func NewNoRecipients(id int) error {
	return &InvalidStateError{Reason: fmt.Sprintf("campaign %d has no recipients", id)}
}
