// Package commands defines the boardline CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init         Create the local data directory and session state blob
//   - publish-key  Publish your serialized public keys to the board
//   - request      Start a discussion with a peer
//   - accept       Accept a received discussion request
//   - refuse       Refuse a received discussion request
//   - send         Encrypt and send a message
//   - recv         Read and decrypt a board slot
//   - read         Mark a discussion's received messages as read
//   - sweep        Fetch announcements, retry failures, run the liveness sweep
//   - contacts     List discussions and their states
//
// # Implementation
//
// The root command loads configuration, restores the owner's session engine
// from its encrypted state blob, and builds the dependency graph (stores,
// services, board client) before any subcommand runs, so handlers share one
// app context. The session engine itself is an external module; a build
// links it in by setting EngineFactory from its main package.
package commands
