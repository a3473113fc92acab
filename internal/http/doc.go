// Package http exposes the salon booking use cases over a JSON API.
//
// The router mounts the following endpoints under /api/v1:
//   - POST /sessions: logs in. Body: {"username","password"}. Response:
//     {"token","expires_at","role","message"}. The token is sent back as
//     "Authorization: Bearer <token>" on later requests.
//   - POST /customers: self-service customer registration.
//   - GET /services is public; POST /services, PUT and DELETE /services/{id}
//     require the administrator.
//   - GET /slots?date=YYYY-MM-DD: free slot start times for a date.
//   - GET /appointments lists the bookings visible to the caller; with
//     ?date= it is the staff day view. POST /appointments books a slot.
//     GET and DELETE /appointments/{id} read and cancel one booking, and
//     GET /appointments/{id}/receipt renders its receipt as text or, with
//     ?format=pdf, as a PDF.
//   - GET, POST /employees and DELETE /employees/{id}: administrator only.
//
// /healthz and the metrics path live outside the API prefix.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
