// Package httpapi wires the HTTP surface of the application: the public
// contact endpoint, notification triggers, and the token-guarded admin API
// for templates, settings, products, backups, and health metrics.
package httpapi
