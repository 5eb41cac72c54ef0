// Package handler provides the HTTP handlers of the kvdis side-car.
//
// JSON endpoints share the Response envelope. /debug/dump renders HTML.
package handler
