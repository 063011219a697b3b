// Package handlers implements the business logic for kbstack CLI commands.
//
// Each handler loads configuration, builds AWS clients and delegates to the
// orchestration or query packages. Dependencies are created through package
// level factory variables so tests can replace them.
package handlers
