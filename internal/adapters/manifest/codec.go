// Package manifest encodes and decodes release and job manifests as YAML.
package manifest

import (
	"bytes"
	"errors"
	"io"

	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ManifestCodec = (*Codec)(nil)

const (
	keyCompiledPackages = "compiled_packages"
	keyName             = "name"
	keyDependencies     = "dependencies"
	yamlIndent          = 2
)

// Codec implements ports.ManifestCodec using gopkg.in/yaml.v3.
type Codec struct{}

// NewCodec creates a new Codec.
func NewCodec() *Codec {
	return &Codec{}
}

type releaseDTO struct {
	CompiledPackages []compiledPackageDTO `yaml:"compiled_packages"`
}

type compiledPackageDTO struct {
	Name         string   `yaml:"name"`
	Dependencies []string `yaml:"dependencies"`
}

type jobDTO struct {
	Packages []string `yaml:"packages"`
}

// DecodeRelease parses the first document of a release manifest.
func (c *Codec) DecodeRelease(data []byte) (*domain.ReleaseManifest, error) {
	var dto releaseDTO
	if err := decodeFirst(data, &dto); err != nil {
		return nil, parseFailed(err, domain.ReleaseManifestName)
	}

	m := &domain.ReleaseManifest{
		CompiledPackages: make([]domain.CompiledPackage, 0, len(dto.CompiledPackages)),
	}
	for _, p := range dto.CompiledPackages {
		if p.Name == "" {
			return nil, parseFailed(errors.New("compiled package without name"), domain.ReleaseManifestName)
		}
		m.CompiledPackages = append(m.CompiledPackages, domain.CompiledPackage{
			Name:         p.Name,
			Dependencies: p.Dependencies,
		})
	}

	return m, nil
}

// DecodeJob parses the first document of a job manifest.
func (c *Codec) DecodeJob(name string, data []byte) (domain.Job, error) {
	var dto jobDTO
	if err := decodeFirst(data, &dto); err != nil {
		return domain.Job{}, zerr.With(parseFailed(err, domain.JobManifestName), "job", name)
	}

	return domain.Job{
		Name:     name,
		Packages: domain.NewPackageSet(dto.Packages...),
	}, nil
}

// EncodeRelease serializes m as a single block-style document.
func (c *Codec) EncodeRelease(m *domain.ReleaseManifest) ([]byte, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, p := range m.CompiledPackages {
		record := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		record.Content = append(record.Content,
			scalar(keyName), scalar(p.Name),
			scalar(keyDependencies), stringSeq(p.Dependencies),
		)
		seq.Content = append(seq.Content, record)
	}

	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	root.Content = append(root.Content, scalar(keyCompiledPackages), seq)

	return encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}})
}

// RewriteRelease replaces the compiled package records of original with those of m.
// Records keep every field of their original mapping except dependencies; all other
// top-level fields are kept as they are. Flow collections are rewritten in block style.
// An original holding no document is replaced by EncodeRelease(m).
func (c *Codec) RewriteRelease(original []byte, m *domain.ReleaseManifest) ([]byte, error) {
	doc, err := decodeNode(original)
	if errors.Is(err, io.EOF) {
		return c.EncodeRelease(m)
	}
	if err != nil {
		return nil, parseFailed(err, domain.ReleaseManifestName)
	}
	root := doc.Content[0]

	records := make(map[string]*yaml.Node)
	seqIdx := -1
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != keyCompiledPackages {
			continue
		}
		seqIdx = i + 1
		for _, record := range root.Content[i+1].Content {
			if name := mappingValue(record, keyName); name != nil {
				records[name.Value] = record
			}
		}
	}

	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, p := range m.CompiledPackages {
		record, ok := records[p.Name]
		if !ok {
			record = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			record.Content = append(record.Content, scalar(keyName), scalar(p.Name))
		}
		setMappingValue(record, keyDependencies, stringSeq(p.Dependencies))
		seq.Content = append(seq.Content, record)
	}

	if seqIdx < 0 {
		root.Content = append(root.Content, scalar(keyCompiledPackages), seq)
	} else {
		root.Content[seqIdx] = seq
	}

	blockStyle(doc)
	return encode(doc)
}

// decodeFirst decodes the first YAML document into v. An empty input leaves v untouched.
func decodeFirst(data []byte, v any) error {
	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// decodeNode decodes the first YAML document as a node tree with a mapping root.
func decodeNode(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("manifest root is not a mapping")
	}
	return &doc, nil
}

func encode(doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(doc); err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrManifestEncodeFailed, err), "yaml encoding failed")
	}
	if err := enc.Close(); err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrManifestEncodeFailed, err), "yaml encoding failed")
	}
	return buf.Bytes(), nil
}

func parseFailed(cause error, file string) error {
	var err error = zerr.Wrap(errors.Join(domain.ErrManifestParseFailed, cause), "invalid manifest")
	return zerr.With(err, "file", file)
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func stringSeq(values []string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, v := range values {
		seq.Content = append(seq.Content, scalar(v))
	}
	return seq
}

// mappingValue returns the value node of key in a mapping node, or nil.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// setMappingValue replaces the value of key, appending the pair if key is absent.
func setMappingValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content, scalar(key), value)
}

// blockStyle clears the flow style of every collection under n. Scalar quoting is kept.
func blockStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style &^= yaml.FlowStyle
	}
	for _, child := range n.Content {
		blockStyle(child)
	}
}
