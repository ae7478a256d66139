package main

// General API documentation for swaggo. Regenerate api/docs with
// `swag init -g cmd/localmind/docs.go -d ./,./internal/httpapi -o api/docs`.
//
// @title           localmind API
// @version         1.0
// @description     Local control surface for the on-device model and inference scheduler.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
