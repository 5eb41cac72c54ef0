// Package connection provides the kvdis-cli line protocol client.
package connection
