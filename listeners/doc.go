// Package listeners provides event listeners for Stick applications.
//
// # Request ID
//
// RequestID runs on boot and assigns a unique ID to each request. It keeps
// an ID sent in X-Request-ID or X-Correlation-ID and otherwise generates a
// UUIDv7:
//
//	app := stick.New(
//	    stick.WithLogger("api", listeners.RequestIDExtractor()),
//	    stick.WithListener(stick.EventBoot, listeners.RequestID()),
//	)
//
// Read the ID in a controller with GetRequestID, or from the REQUEST_ID
// hive key.
//
// # Access Log
//
// AccessLog runs on shutdown, after the response has been produced, and
// writes one structured entry per request:
//
//	app := stick.New(
//	    stick.WithListener(stick.EventShutdown, listeners.AccessLog(
//	        listeners.WithAccessLogSkip("/favicon.ico"),
//	    )),
//	)
package listeners
