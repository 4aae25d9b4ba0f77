// Package build holds build-time information.
package build

// Version is the application version. It defaults to "dev" and can be
// overwritten by linker flags at release build time.
var Version = "dev"
