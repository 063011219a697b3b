// Package config defines the kbstack configuration model.
//
// The [Config] struct describes one knowledge base stack: region, resource
// name prefix, the local document set, the embedding and generation models,
// vector index layout and chunking. It is loaded from a YAML file
// (kbstack.yaml by default) and validated before any remote call is made.
// Poll intervals, ceilings and settle delays are loaded separately from
// the environment by [LoadTimeouts].
package config
