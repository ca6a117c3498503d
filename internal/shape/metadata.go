/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package shape

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed metadata.yaml
var defaultMetadata []byte

// ItemMeta describes one shape type.
type ItemMeta struct {
	Type               string     `yaml:"type"`
	Constructor        string     `yaml:"constructor"`
	RequiredProperties []string   `yaml:"required_properties"`
	EditableProperties []string   `yaml:"editable_properties"`
	Default            Definition `yaml:"default"`
}

// PropertyMeta describes an editable property for a properties dialog.
type PropertyMeta struct {
	Name  string   `yaml:"name"`
	Kind  string   `yaml:"kind"`
	Label string   `yaml:"label"`
	Min   *float64 `yaml:"min,omitempty"`
	Max   *float64 `yaml:"max,omitempty"`
}

// GeneralMeta configures the drawing-level section.
type GeneralMeta struct {
	ItemsName          string   `yaml:"items_name"`
	ItemName           string   `yaml:"item_name"`
	EditableProperties []string `yaml:"editable_properties"`
}

// Metadata is the shape catalogue.
type Metadata struct {
	General    GeneralMeta
	Items      []ItemMeta
	Properties []PropertyMeta
}

type metadataFile struct {
	General GeneralMeta `yaml:"general"`
	Items   []struct {
		Item ItemMeta `yaml:"item"`
	} `yaml:"items"`
	Properties []struct {
		Property PropertyMeta `yaml:"property"`
	} `yaml:"properties"`
}

// ParseMetadata decodes a metadata document.
func ParseMetadata(data []byte) (*Metadata, error) {
	var f metadataFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	md := &Metadata{General: f.General}
	if md.General.ItemsName == "" {
		md.General.ItemsName = "items"
	}
	if md.General.ItemName == "" {
		md.General.ItemName = "item"
	}
	seen := map[string]bool{}
	for i, e := range f.Items {
		it := e.Item
		if it.Type == "" {
			return nil, fmt.Errorf("metadata item %d has no type", i)
		}
		if seen[it.Type] {
			return nil, fmt.Errorf("metadata type %q declared twice", it.Type)
		}
		seen[it.Type] = true
		md.Items = append(md.Items, it)
	}
	for _, p := range f.Properties {
		md.Properties = append(md.Properties, p.Property)
	}
	return md, nil
}

// DefaultMetadata returns the built-in catalogue.
func DefaultMetadata() *Metadata {
	md, err := ParseMetadata(defaultMetadata)
	if err != nil {
		panic(err)
	}
	return md
}

// LoadMetadata reads a catalogue from path; an empty path yields the default.
func LoadMetadata(path string) (*Metadata, error) {
	if path == "" {
		return DefaultMetadata(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return ParseMetadata(b)
}

// Item returns the metadata of a type.
func (m *Metadata) Item(typ string) (ItemMeta, bool) {
	for _, it := range m.Items {
		if it.Type == typ {
			return it, true
		}
	}
	return ItemMeta{}, false
}

// Property returns the description of a property.
func (m *Metadata) Property(name string) (PropertyMeta, bool) {
	for _, p := range m.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyMeta{}, false
}

// Types lists the declared type tags in declaration order.
func (m *Metadata) Types() []string {
	out := make([]string, 0, len(m.Items))
	for _, it := range m.Items {
		out = append(out, it.Type)
	}
	return out
}
