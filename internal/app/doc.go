// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle (load the blueprint,
// read inputs, resolve and execute the network, write outputs), decoupled
// from any specific entrypoint like a CLI.
package app
