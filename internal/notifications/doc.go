// Package notifications sends ntfy push messages when a render finishes or
// fails. An unset topic yields a no-op service.
package notifications
