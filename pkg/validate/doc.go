// Package validate checks flat string maps against declarative field schemas.
//
// A [Schema] maps field names to [Rules]. Each field is checked against its
// constraints in a fixed order (required, min length, max length, email,
// one-of) and only the first failure is reported:
//
//	schema := validate.Schema{
//	    "username": {Required: true, MinLength: 3, MaxLength: 20},
//	    "email":    {Required: true, Email: true},
//	    "role":     {Required: true, OneOf: []string{"admin", "user"}},
//	}
//
//	res := validate.Validate(validate.Data{"username": "jo"}, schema)
//	// res.Valid == false
//	// res.Errors["username"] == "username must be at least 3 characters"
//
// Fields that are absent or empty and not required are skipped entirely.
//
// [Extend] derives a schema from another one by overriding individual
// constraints per field, which keeps related schemas (create vs update) in sync.
package validate
