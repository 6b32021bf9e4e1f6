package users

import "github.com/dmitrymomot/userdesk/pkg/validate"

// CreateSchema validates a complete user record.
var CreateSchema = validate.Schema{
	"username": {Required: true, MinLength: 3, MaxLength: 20},
	"email":    {Required: true, Email: true, MaxLength: 255},
	"name":     {MaxLength: 50},
	"role":     {Required: true, OneOf: Roles},
	"password": {Required: true, MinLength: 6, MaxLength: 40},
}

// UpdateSchema is CreateSchema with a required id and an optional password.
var UpdateSchema = validate.Extend(CreateSchema, validate.Schema{
	"id":       {Required: true},
	"password": validate.Optional(),
})

// AdminChangePasswordSchema validates a password reset performed by an admin.
var AdminChangePasswordSchema = validate.Schema{
	"newPassword":     {Required: true, MinLength: 6, MaxLength: 40},
	"confirmPassword": {Required: true, MinLength: 6, MaxLength: 40},
}

// ChangePasswordSchema additionally requires the current password.
var ChangePasswordSchema = validate.Extend(AdminChangePasswordSchema, validate.Schema{
	"currentPassword": {Required: true, MinLength: 6, MaxLength: 40},
})

// LoginSchema only checks presence; wrong credentials are reported separately.
var LoginSchema = validate.Schema{
	"username": {Required: true},
	"password": {Required: true},
}
