// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// modelFile is the YAML representation of a model. Operations, machines and
// parts are referenced by name; identifiers are given by the order of
// declaration.
type modelFile struct {
	Name       string                    `yaml:"name,omitempty"`
	Options    Options                   `yaml:"options"`
	Operations []string                  `yaml:"operations"`
	Machines   []machineFile             `yaml:"machines"`
	Times      map[string]map[string]int `yaml:"times"`
	Parts      []partFile                `yaml:"parts"`
}

type machineFile struct {
	Name      string `yaml:"name"`
	Instances int    `yaml:"instances"`
}

type partFile struct {
	Name      string       `yaml:"name"`
	Color     string       `yaml:"color,omitempty"`
	Subpart   bool         `yaml:"subpart,omitempty"`
	Sequences [][]itemFile `yaml:"sequences"`
}

// itemFile is either the name of an operation, for DEFAULT items, or a
// mapping with a single key, permutation or alternative.
type itemFile struct {
	Op          string `yaml:"op,omitempty"`
	Permutation string `yaml:"permutation,omitempty"`
	Alternative string `yaml:"alternative,omitempty"`
}

func (it *itemFile) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		it.Op = value.Value
		return nil
	}
	type plain itemFile
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	n := 0
	for _, s := range []string{p.Op, p.Permutation, p.Alternative} {
		if s != "" {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("line %d: item must have exactly one of op, permutation or alternative", value.Line)
	}
	*it = itemFile(p)
	return nil
}

func (it itemFile) MarshalYAML() (interface{}, error) {
	switch {
	case it.Permutation != "":
		return map[string]string{"permutation": it.Permutation}, nil
	case it.Alternative != "":
		return map[string]string{"alternative": it.Alternative}, nil
	}
	return it.Op, nil
}

// Load reads a model, and the options it defines, from a YAML file. Options
// missing from the file keep their default value.
func Load(path string) (*Model, Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Options{}, fmt.Errorf("failed to read model file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a model from YAML data. Unknown fields are rejected.
func Parse(data []byte) (*Model, Options, error) {
	doc := modelFile{Options: DefaultOptions()}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, Options{}, fmt.Errorf("%w: empty model file", ErrModel)
		}
		return nil, Options{}, fmt.Errorf("%w: failed to parse YAML: %s", ErrModel, err)
	}
	m, err := doc.model()
	if err != nil {
		return nil, Options{}, err
	}
	if err := m.Validate(); err != nil {
		return nil, Options{}, err
	}
	if err := doc.Options.Validate(); err != nil {
		return nil, Options{}, err
	}
	return m, doc.Options, nil
}

func index(kind string, names []string) (map[string]int, error) {
	res := make(map[string]int, len(names))
	for k, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: %s %d has no name", ErrModel, kind, k)
		}
		if _, ok := res[name]; ok {
			return nil, fmt.Errorf("%w: duplicate %s %q", ErrModel, kind, name)
		}
		res[name] = k
	}
	return res, nil
}

func (doc *modelFile) model() (*Model, error) {
	m := &Model{}
	ops, err := index("operation", doc.Operations)
	if err != nil {
		return nil, err
	}
	for k, name := range doc.Operations {
		m.Operations = append(m.Operations, Operation{ID: k, Name: name})
	}
	mnames := make([]string, len(doc.Machines))
	for k, mc := range doc.Machines {
		mnames[k] = mc.Name
		m.Machines = append(m.Machines, Machine{ID: k, Name: mc.Name, Instances: mc.Instances})
	}
	machines, err := index("machine", mnames)
	if err != nil {
		return nil, err
	}
	m.Times = make([][]int, len(m.Operations))
	for w := range m.Times {
		m.Times[w] = make([]int, len(m.Machines))
	}
	for op, row := range doc.Times {
		w, ok := ops[op]
		if !ok {
			return nil, fmt.Errorf("%w: unknown operation %q in times", ErrModel, op)
		}
		for mc, d := range row {
			i, ok := machines[mc]
			if !ok {
				return nil, fmt.Errorf("%w: unknown machine %q in times", ErrModel, mc)
			}
			m.Times[w][i] = d
		}
	}
	pnames := make([]string, len(doc.Parts))
	for k, p := range doc.Parts {
		pnames[k] = p.Name
	}
	parts, err := index("part", pnames)
	if err != nil {
		return nil, err
	}
	for k, pf := range doc.Parts {
		p := &Part{ID: k, Name: pf.Name, Color: pf.Color, Subpart: pf.Subpart}
		for _, sf := range pf.Sequences {
			seq := Sequence{}
			for _, it := range sf {
				var item SequenceItem
				switch {
				case it.Alternative != "":
					sub, ok := parts[it.Alternative]
					if !ok {
						return nil, fmt.Errorf("%w: unknown sub-part %q in part %q", ErrModel, it.Alternative, pf.Name)
					}
					item = SequenceItem{Kind: Alternative, Part: sub}
				case it.Permutation != "":
					w, ok := ops[it.Permutation]
					if !ok {
						return nil, fmt.Errorf("%w: unknown operation %q in part %q", ErrModel, it.Permutation, pf.Name)
					}
					item = SequenceItem{Kind: Permutation, Op: w}
				default:
					w, ok := ops[it.Op]
					if !ok {
						return nil, fmt.Errorf("%w: unknown operation %q in part %q", ErrModel, it.Op, pf.Name)
					}
					item = SequenceItem{Kind: Default, Op: w}
				}
				seq = append(seq, item)
			}
			p.Sequences = append(p.Sequences, seq)
		}
		m.Parts = append(m.Parts, p)
	}
	return m, nil
}

// Marshal returns the YAML representation of a model and its options, in the
// format read by Parse.
func Marshal(m *Model, opts Options) ([]byte, error) {
	doc := modelFile{Options: opts, Times: make(map[string]map[string]int)}
	for _, o := range m.Operations {
		doc.Operations = append(doc.Operations, o.Name)
	}
	for _, mc := range m.Machines {
		doc.Machines = append(doc.Machines, machineFile{Name: mc.Name, Instances: mc.Instances})
	}
	for w, row := range m.Times {
		for i, d := range row {
			if d == 0 {
				continue
			}
			if doc.Times[m.Operations[w].Name] == nil {
				doc.Times[m.Operations[w].Name] = make(map[string]int)
			}
			doc.Times[m.Operations[w].Name][m.Machines[i].Name] = d
		}
	}
	for _, p := range m.Parts {
		pf := partFile{Name: p.Name, Color: p.Color, Subpart: p.Subpart}
		for _, seq := range p.Sequences {
			items := []itemFile{}
			for _, it := range seq {
				switch it.Kind {
				case Permutation:
					items = append(items, itemFile{Permutation: m.Operations[it.Op].Name})
				case Alternative:
					items = append(items, itemFile{Alternative: m.Parts[it.Part].Name})
				default:
					items = append(items, itemFile{Op: m.Operations[it.Op].Name})
				}
			}
			pf.Sequences = append(pf.Sequences, items)
		}
		doc.Parts = append(doc.Parts, pf)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}
	return buf.Bytes(), nil
}
