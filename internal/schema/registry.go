// Package schema provides a static SchemaProvider over the HCA core entry
// sheet classes: field definitions, identifier and foreign-key metadata, and
// per-row instance validation.
package schema

import (
	"fmt"

	"sheetcurator/pkg/domain"
)

// Schema class identifiers.
const (
	ClassDataset                domain.SchemaClassID = "Dataset"
	ClassAdiposeDataset         domain.SchemaClassID = "AdiposeDataset"
	ClassGutDataset             domain.SchemaClassID = "GutDataset"
	ClassMusculoskeletalDataset domain.SchemaClassID = "MusculoskeletalDataset"
	ClassDonor                  domain.SchemaClassID = "Donor"
	ClassSample                 domain.SchemaClassID = "Sample"
	ClassAdiposeSample          domain.SchemaClassID = "AdiposeSample"
	ClassGutSample              domain.SchemaClassID = "GutSample"
	ClassCell                   domain.SchemaClassID = "Cell"
)

// defaultNetwork keys the fallback class in classTable.
const defaultNetwork = "DEFAULT"

var classTable = map[domain.EntityType]map[string]domain.SchemaClassID{
	domain.EntityDataset: {
		defaultNetwork:    ClassDataset,
		"adipose":         ClassAdiposeDataset,
		"gut":             ClassGutDataset,
		"musculoskeletal": ClassMusculoskeletalDataset,
	},
	domain.EntityDonor: {
		defaultNetwork: ClassDonor,
	},
	domain.EntitySample: {
		defaultNetwork: ClassSample,
		"adipose":      ClassAdiposeSample,
		"gut":          ClassGutSample,
	},
	domain.EntityCell: {
		defaultNetwork: ClassCell,
	},
}

// entityByClass is derived from classTable at init.
var entityByClass = func() map[domain.SchemaClassID]domain.EntityType {
	m := make(map[domain.SchemaClassID]domain.EntityType)
	for entity, networks := range classTable {
		for _, class := range networks {
			m[class] = entity
		}
	}
	return m
}()

var foreignKeyTable = map[domain.SchemaClassID][]domain.ForeignKey{
	ClassDonor: {
		{Field: "dataset_id", Class: ClassDataset},
	},
	ClassSample: {
		{Field: "dataset_id", Class: ClassDataset},
		{Field: "donor_id", Class: ClassDonor},
	},
}

// Provider is a domain.SchemaProvider backed by the static registry. The
// zero value is ready to use and safe for concurrent reads.
type Provider struct{}

// NewProvider returns the registry-backed schema provider.
func NewProvider() *Provider { return &Provider{} }

// ClassFor resolves the class for an entity type under a bionetwork,
// falling back to the entity type's default class.
func (p *Provider) ClassFor(entityType domain.EntityType, bionetwork string) (domain.SchemaClassID, error) {
	networks, ok := classTable[entityType]
	if !ok {
		return "", fmt.Errorf("unsupported entity type %q", entityType)
	}
	if class, ok := networks[bionetwork]; ok {
		return class, nil
	}
	return networks[defaultNetwork], nil
}

// InducedFields returns the full field list of a class.
func (p *Provider) InducedFields(class domain.SchemaClassID) ([]domain.FieldDef, error) {
	fields, ok := fieldTable[class]
	if !ok {
		return nil, fmt.Errorf("unknown schema class %q", class)
	}
	return fields, nil
}

// IdentifierField returns the name of the class's identifier field.
func (p *Provider) IdentifierField(class domain.SchemaClassID) (string, error) {
	fields, err := p.InducedFields(class)
	if err != nil {
		return "", err
	}
	for _, f := range fields {
		if f.Identifier {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("no identifier field on class %q", class)
}

// ForeignKeys returns the class's references to other classes. Subclasses
// inherit the base class's keys.
func (p *Provider) ForeignKeys(class domain.SchemaClassID) ([]domain.ForeignKey, error) {
	if _, ok := fieldTable[class]; !ok {
		return nil, fmt.Errorf("unknown schema class %q", class)
	}
	base := class
	switch class {
	case ClassAdiposeDataset, ClassGutDataset, ClassMusculoskeletalDataset:
		base = ClassDataset
	case ClassAdiposeSample, ClassGutSample:
		base = ClassSample
	}
	return foreignKeyTable[base], nil
}

// EntityFor maps a class back to its entity type.
func (p *Provider) EntityFor(class domain.SchemaClassID) (domain.EntityType, error) {
	entity, ok := entityByClass[class]
	if !ok {
		return "", fmt.Errorf("unknown schema class %q", class)
	}
	return entity, nil
}
