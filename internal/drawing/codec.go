/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package drawing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"godeklar/internal/shape"
)

// Keys names the items list and the per-item wrapper in a document.
type Keys struct {
	Items string
	Item  string
}

func DefaultKeys() Keys { return Keys{Items: "items", Item: "item"} }

// KeysFrom takes the key names from shape metadata.
func KeysFrom(meta *shape.Metadata) Keys {
	k := DefaultKeys()
	if meta == nil {
		return k
	}
	if meta.General.ItemsName != "" {
		k.Items = meta.General.ItemsName
	}
	if meta.General.ItemName != "" {
		k.Item = meta.General.ItemName
	}
	return k
}

func Decode(r io.Reader) (*Document, error) { return DefaultKeys().Decode(r) }

func Encode(w io.Writer, doc *Document) error { return DefaultKeys().Encode(w, doc) }

// Decode reads a YAML document. Malformed items do not fail the decode; they
// are returned as entries with Err set.
func (k Keys) Decode(r io.Reader) (*Document, error) {
	doc := &Document{Version: CurrentVersion, Extra: map[string]any{}}
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return nil, fmt.Errorf("decode drawing: %w", err)
	}
	n := &root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("decode drawing: line %d: top level must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		switch key {
		case KeyVersion:
			if err := val.Decode(&doc.Version); err != nil {
				return nil, fmt.Errorf("decode drawing: version: %w", err)
			}
		case KeyGeneral:
			if err := val.Decode(&doc.General); err != nil {
				return nil, fmt.Errorf("decode drawing: general: %w", err)
			}
		case k.Items:
			if val.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("decode drawing: line %d: %s must be a list", val.Line, k.Items)
			}
			for idx, e := range val.Content {
				doc.Items = append(doc.Items, k.decodeEntry(idx, e))
			}
		default:
			var v any
			if err := val.Decode(&v); err != nil {
				return nil, fmt.Errorf("decode drawing: %s: %w", key, err)
			}
			doc.Extra[key] = v
		}
	}
	return doc, nil
}

func (k Keys) decodeEntry(idx int, n *yaml.Node) Entry {
	if n.Kind != yaml.MappingNode {
		return Entry{Err: &EntryError{Index: idx, Err: fmt.Errorf("line %d: expected a mapping", n.Line)}}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value != k.Item {
			continue
		}
		var def shape.Definition
		if err := n.Content[i+1].Decode(&def); err != nil {
			return Entry{Err: &EntryError{Index: idx, Err: err}}
		}
		return Entry{Item: def}
	}
	return Entry{Err: &EntryError{Index: idx, Err: fmt.Errorf("invalid items definition format, %s not present", k.Item)}}
}

// Encode writes doc as YAML with two-space indentation. Entries with Err are
// skipped.
func (k Keys) Encode(w io.Writer, doc *Document) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, v any) error {
		var n yaml.Node
		if err := n.Encode(v); err != nil {
			return fmt.Errorf("encode drawing: %s: %w", key, err)
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, &n)
		return nil
	}
	version := doc.Version
	if version == 0 {
		version = CurrentVersion
	}
	if err := add(KeyVersion, version); err != nil {
		return err
	}
	if err := add(KeyGeneral, doc.General); err != nil {
		return err
	}
	items := &yaml.Node{Kind: yaml.SequenceNode}
	for _, e := range doc.Items {
		if e.Err != nil {
			continue
		}
		var item yaml.Node
		if err := item.Encode(e.Item); err != nil {
			return fmt.Errorf("encode drawing: %s: %w", e.Item.Type(), err)
		}
		items.Content = append(items.Content, &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: k.Item}, &item,
		}})
	}
	root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k.Items}, items)

	extra := make([]string, 0, len(doc.Extra))
	for key := range doc.Extra {
		extra = append(extra, key)
	}
	sort.Strings(extra)
	for _, key := range extra {
		if err := add(key, doc.Extra[key]); err != nil {
			return err
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode drawing: %w", err)
	}
	return enc.Close()
}

// Marshal encodes doc into memory.
func (k Keys) Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := k.Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (k Keys) Unmarshal(data []byte) (*Document, error) {
	return k.Decode(bytes.NewReader(data))
}
