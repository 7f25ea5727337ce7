// Package supervisor launches the geotag server, waits for it to answer and
// reports what happens to it.
//
// A Supervisor publishes exactly two kinds of value on its events.Bus:
// events.Ready once the endpoint can be loaded, and events.Failure when
// startup or the server process goes wrong. When the settings do not ask
// for a local server, Start publishes Ready for the configured endpoint
// straight away and spawns nothing.
//
// Exit handling:
//
//   - Any exit before readiness, including exit status 0, is a StartupError.
//   - After readiness, an exit the caller did not ask for is a StartupError
//     only when the status is non-zero.
//   - An exit caused by Terminate is never reported as an error.
//
// Readiness is observed by polling the endpoint with exponential backoff
// until it returns a 2xx response or the deadline passes (TimeoutError).
package supervisor
