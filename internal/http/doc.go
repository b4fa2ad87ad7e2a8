// Package http provides HTTP handlers and middleware for the scheduling API.
//
// The router exposes the following endpoints:
//   - POST /schedules: places a task on a worker's schedule. The request body
//     is the `createScheduleRequest` payload defined in schedule_handler.go.
//     When smart scheduling moves the placement or optimization gives up, the
//     response carries the final entry plus an optional `warning` string.
//   - POST /schedules/{id}/reschedule: moves an entry to the `new_time` in the
//     body, recording the `reason`. Conflicts at the new time never block the
//     move.
//   - POST /schedules/{id}/cancel: marks an entry cancelled. The body may
//     carry a `reason` and may be empty; cancelling twice is a no-op.
//   - POST /schedules/{id}/confirm: records the worker's confirmation.
//   - GET /schedules?worker_id=...&building_id=...&from=...&to=...&active=true:
//     lists entries for one worker or one building, sorted by scheduled time.
//   - GET /workers/{id}/context: returns the worker's derived schedule
//     context with current commitments, detected conflicts and recommended
//     slots.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
