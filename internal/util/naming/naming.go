package naming

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"
)

const (
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffixLength   = 6
)

// Generator draws run suffixes from a seeded source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed. Equal seeds yield
// equal suffix sequences.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Suffix returns a new lowercase alphanumeric suffix.
func (g *Generator) Suffix() string {
	b := make([]byte, suffixLength)
	for i := range b {
		b[i] = suffixAlphabet[g.rng.IntN(len(suffixAlphabet))]
	}
	return string(b)
}

// NewSuffix returns a suffix from a generator seeded with the current time and pid.
func NewSuffix() string {
	seed := uint64(time.Now().UnixNano()) ^ uint64(os.Getpid())<<32
	return NewGenerator(seed).Suffix()
}

// Names holds every resource name of one run.
type Names struct {
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`
}

// New returns the name set for prefix and suffix.
func New(prefix, suffix string) Names {
	return Names{Prefix: prefix, Suffix: suffix}
}

func (n Names) join(kind string) string {
	return fmt.Sprintf("%s-%s-%s", n.Prefix, kind, n.Suffix)
}

func (n Names) Bucket() string           { return n.join("docs") }
func (n Names) Collection() string       { return n.join("collection") }
func (n Names) Index() string            { return n.join("index") }
func (n Names) KnowledgeBase() string    { return fmt.Sprintf("%s-%s", n.Prefix, n.Suffix) }
func (n Names) DataSource() string       { return n.join("source") }
func (n Names) ExecutionRole() string    { return n.join("role") }
func (n Names) ModelPolicy() string      { return n.join("fm-policy") }
func (n Names) StoragePolicy() string    { return n.join("s3-policy") }
func (n Names) CollectionPolicy() string { return n.join("aoss-policy") }
func (n Names) EncryptionPolicy() string { return n.join("enc") }
func (n Names) NetworkPolicy() string    { return n.join("net") }
func (n Names) AccessPolicy() string     { return n.join("access") }
