// Package knowledgebase provisions the Bedrock vector knowledge base on top
// of the collection index and waits for it to become ACTIVE.
package knowledgebase
