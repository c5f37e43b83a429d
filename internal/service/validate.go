// Package service contains the application services: the library
// service orchestrating the book lifecycle, and the auth service
// handling accounts and sessions.
package service

import "github.com/storytimeapp/storytime-server/internal/validation"

// validate is the shared request validator.
var validate = validation.New()
