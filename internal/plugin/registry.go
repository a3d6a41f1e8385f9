package plugin

import (
	"errors"
	"fmt"
	"sync"
)

// RawRecord is a record in generic form: its header and its subrecords in
// schema order.
type RawRecord struct {
	Header RecordHeader
	Fields []Field
}

// RecordCodec maps one record type between the plugin model and the generic
// field list consumed by the record reader and writer.
type RecordCodec interface {
	// Type is the record type tag, which is also the label of its group.
	Type() Tag
	// Schema lists the mandatory subrecords in on-disk order.
	Schema() Schema
	// DecodeRecord builds a typed record from fields read in Schema order
	// and adds it to p.
	DecodeRecord(p *Plugin, rec RawRecord) error
	// EncodeRecords returns the records of this type held by p.
	EncodeRecords(p *Plugin) ([]RawRecord, error)
}

// Registry resolves group labels to record codecs. Group encode order
// follows registration order.
type Registry struct {
	mu     sync.RWMutex
	codecs map[Tag]RecordCodec
	order  []Tag
}

// NewRegistry returns a registry holding the given codecs.
func NewRegistry(codecs ...RecordCodec) (*Registry, error) {
	reg := &Registry{codecs: make(map[Tag]RecordCodec, len(codecs))}
	for _, c := range codecs {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds c. Registering a second codec for the same type fails.
func (r *Registry) Register(c RecordCodec) error {
	if c == nil {
		return errors.New("register record codec: nil codec")
	}
	if len(c.Schema()) == 0 {
		return fmt.Errorf("register record codec %s: empty schema", c.Type())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.codecs[c.Type()]; exists {
		return fmt.Errorf("register record codec %s: already registered", c.Type())
	}
	r.codecs[c.Type()] = c
	r.order = append(r.order, c.Type())
	return nil
}

// Lookup returns the codec registered for t.
func (r *Registry) Lookup(t Tag) (RecordCodec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[t]
	return c, ok
}

// Codecs returns the registered codecs in registration order.
func (r *Registry) Codecs() []RecordCodec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RecordCodec, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.codecs[t])
	}
	return out
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// DefaultRegistry returns the shared registry of built-in record codecs.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		reg, err := NewRegistry(MusicCodec{})
		if err != nil {
			panic(err)
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}
