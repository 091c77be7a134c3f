// Package errors provides structured error types shared by all orgidm
// packages. Services return *Error values carrying an ErrorCode; HTTP
// handlers map them to status codes with HTTPStatus. Absence of data and
// unrecognized role values are reported as NOT_FOUND/FORBIDDEN codes, never
// as allow-by-default conditions.
package errors
