// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// FieldType enumerates the semantic column types a schema field may declare.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldNumber   FieldType = "number"
	FieldBoolean  FieldType = "boolean"
	FieldDate     FieldType = "date"
	FieldEmail    FieldType = "email"
	FieldPassword FieldType = "password"
)

// FieldTypes lists every valid field type in display order.
var FieldTypes = []FieldType{FieldString, FieldNumber, FieldBoolean, FieldDate, FieldEmail, FieldPassword}

// Valid reports whether t is one of the enumerated field types.
func (t FieldType) Valid() bool {
	for _, ft := range FieldTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// Field is one column of a table definition. DefaultValue is nil when no
// default was declared.
type Field struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         FieldType `json:"type"`
	Required     bool      `json:"required"`
	Unique       bool      `json:"unique,omitempty"`
	DefaultValue *string   `json:"defaultValue,omitempty"`
}

// Table is a backend model definition. It has no relationships.
type Table struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := t
	out.Fields = make([]Field, len(t.Fields))
	for i, f := range t.Fields {
		out.Fields[i] = f
		if f.DefaultValue != nil {
			v := *f.DefaultValue
			out.Fields[i].DefaultValue = &v
		}
	}
	return out
}

// CloneTables deep-copies a table list.
func CloneTables(tables []Table) []Table {
	if tables == nil {
		return nil
	}
	out := make([]Table, len(tables))
	for i, t := range tables {
		out[i] = t.Clone()
	}
	return out
}
