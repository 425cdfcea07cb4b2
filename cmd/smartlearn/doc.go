// Command smartlearn runs the educational assistant server.
//
// Usage:
//
//	smartlearn serve                       # start the server
//	smartlearn serve --config config.yaml  # with a config file
//	smartlearn version                     # show version
//	smartlearn health                      # probe a running server
package main
