// Package storage provisions the document bucket and uploads the source
// documents into it.
//
// The bucket is created in the run's region and recorded in the ledger only
// when this run created it. Uploads fan out over a bounded worker group; the
// first failed upload cancels the rest and fails the phase.
package storage
