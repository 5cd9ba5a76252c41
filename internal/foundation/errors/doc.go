// Package errors provides the classified error primitives used across docmigrate.
//
// A ClassifiedError carries a category (config, nav, filesystem, convert, ...),
// a severity and structured context. The CLI adapter maps categories onto
// process exit codes so fatal run conditions surface consistently.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryNav, "nav key not found").
//		Fatal().
//		WithContext("config", path).
//		Build()
package errors
