// Package api provides the HTTP surface of the service: manual triggers for
// the generation and dispatch jobs, and the adherence record endpoints used by
// the confirm/skip flow. Handlers translate between HTTP and the service
// layer; they hold no business logic of their own.
package api
