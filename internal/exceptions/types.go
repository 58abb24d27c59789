package exceptions

import (
	"errors"
	"fmt"
)

type ServiceError struct {
	StatusCode int
	Cause      error
}

func (se *ServiceError) Error() string {
	return se.Cause.Error()
}

func (se *ServiceError) Unwrap() error {
	return se.Cause
}

type RequestError interface {
	ToServiceError() *ServiceError
	Error() string
}

// AsServiceError resolves any error in the chain to the status code it should
// be reported with, defaulting to a 500.
func AsServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	var re RequestError
	if errors.As(err, &re) {
		return re.ToServiceError()
	}
	return &ServiceError{
		StatusCode: 500,
		Cause:      err,
	}
}

type ConflictError struct {
	Resource string
	Id       string
}

func (ce *ConflictError) Error() string {
	return fmt.Sprintf("Found conflicting %s with id: %s", ce.Resource, ce.Id)
}

func (ce *ConflictError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 409,
		Cause:      ce,
	}
}

func Conflict(resource string, id string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Id:       id,
	}
}

type NotFoundError struct {
	Resource string
	Id       string
}

func (nfe *NotFoundError) Error() string {
	return fmt.Sprintf("Could not find a %s with id: %s", nfe.Resource, nfe.Id)
}

func (nfe *NotFoundError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 404,
		Cause:      nfe,
	}
}

func NotFound(resource string, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Id:       id,
	}
}

type InvalidInputError struct {
	Message string
}

func (ie *InvalidInputError) Error() string {
	return ie.Message
}

func (ie *InvalidInputError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 400,
		Cause:      ie,
	}
}

func InvalidInput(message string) *InvalidInputError {
	return &InvalidInputError{
		Message: message,
	}
}

type InternalServerError struct {
	Message string
}

func (ie *InternalServerError) Error() string {
	return ie.Message
}

func (ie *InternalServerError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 500,
		Cause:      ie,
	}
}

func InternalServer(message string) *InternalServerError {
	return &InternalServerError{
		Message: message,
	}
}

// UnavailableError reports a failed call to an external collaborator
// (identity, persistence or suggestions). The caller may retry by hand.
type UnavailableError struct {
	Service string
	Cause   error
}

func (ue *UnavailableError) Error() string {
	return fmt.Sprintf("%s is unavailable: %v", ue.Service, ue.Cause)
}

func (ue *UnavailableError) Unwrap() error {
	return ue.Cause
}

func (ue *UnavailableError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 503,
		Cause:      ue,
	}
}

func ServiceUnavailable(service string, cause error) *UnavailableError {
	return &UnavailableError{
		Service: service,
		Cause:   cause,
	}
}
