// Package naming provides consistent naming functions for knowledge base stack resources.
//
// Every resource of one provisioning run is named {prefix}-{kind}-{suffix},
// where suffix is a 6-character base36 string drawn once per run by
// [Generator]. The shared suffix ties the resources of a run together for
// teardown and keeps concurrent runs in the same account from colliding
// without any coordination service.
package naming
