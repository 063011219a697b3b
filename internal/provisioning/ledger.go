package provisioning

import "sync"

// ResourceKind identifies what a ledger entry refers to.
type ResourceKind string

// Resource kinds recorded by the phases.
const (
	ResourceBucket           ResourceKind = "s3-bucket"
	ResourcePolicy           ResourceKind = "iam-policy"
	ResourceRole             ResourceKind = "iam-role"
	ResourceAttachment       ResourceKind = "iam-attachment"
	ResourceEncryptionPolicy ResourceKind = "aoss-encryption-policy"
	ResourceNetworkPolicy    ResourceKind = "aoss-network-policy"
	ResourceAccessPolicy     ResourceKind = "aoss-access-policy"
	ResourceCollection       ResourceKind = "aoss-collection"
	ResourceIndex            ResourceKind = "aoss-index"
	ResourceKnowledgeBase    ResourceKind = "knowledge-base"
	ResourceDataSource       ResourceKind = "data-source"
)

// Resource is one created remote resource.
//
// ID holds the service identifier (ARN, collection or knowledge base ID).
// Parent holds what the resource lives in: the collection endpoint of an
// index or the knowledge base of a data source. An attachment is named
// after its role and identified by the policy ARN.
type Resource struct {
	Kind   ResourceKind `yaml:"kind" json:"kind"`
	Name   string       `yaml:"name" json:"name"`
	ID     string       `yaml:"id,omitempty" json:"id,omitempty"`
	Parent string       `yaml:"parent,omitempty" json:"parent,omitempty"`
}

// Ledger records created resources in creation order.
type Ledger struct {
	mu        sync.Mutex
	resources []Resource
}

// NewLedger creates a ledger, optionally pre-populated from a state file.
func NewLedger(resources ...Resource) *Ledger {
	return &Ledger{resources: append([]Resource(nil), resources...)}
}

// Record appends a created resource.
func (l *Ledger) Record(r Resource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resources = append(l.resources, r)
}

// Resources returns a copy of the entries in creation order.
func (l *Ledger) Resources() []Resource {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Resource(nil), l.resources...)
}

// Newest returns a copy of the entries, newest first.
func (l *Ledger) Newest() []Resource {
	res := l.Resources()
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.resources)
}
