// Package logging provides file-based logging with rotation for ScoutMCP.
// Logs are written as JSON lines to ~/.scoutmcp/logs/ so that a server
// speaking MCP over stdio can stay completely silent on stdout.
//
// In CLI mode logs may additionally go to stderr; in MCP serve mode the
// log file is the only destination.
package logging
