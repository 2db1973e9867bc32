// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

// Package symtab implements the symbol table populated by the tokenizer.
package symtab

import "fmt"

// A Record describes one identifier seen in the program text.
type Record struct {
	ID    int    // Dense 1-based identifier, in insertion order.
	Name  string // Identifier name.
	Type  string // Inferred type label, or "unknown".
	Scope string // "global", an enclosing function or class name, or a scope token like "if line number 3".
}

func (r *Record) String() string {
	return fmt.Sprintf("%d: %s %s (%s)", r.ID, r.Name, r.Type, r.Scope)
}

// Table is an insertion-ordered collection of identifier records.  The
// tokenizer is the sole writer; after tokenization the table is read only.
type Table struct {
	records []*Record
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{}
}

// Upsert records an assignment to name in the given scope.  If the name has
// been recorded before, in any scope, the existing record is promoted to the
// "global" scope and its type is overwritten unless the new inference came
// back "unknown".  Function and class records are never demoted.  Otherwise a
// new record is inserted in the given scope with the next dense ID.
func (t *Table) Upsert(name, typ, scope string) *Record {
	for _, r := range t.records {
		if r.Name != name {
			continue
		}
		if r.Type == "function" || r.Type == "class" {
			return r
		}
		r.Scope = "global"
		if typ != "unknown" {
			r.Type = typ
		}
		return r
	}
	r := &Record{ID: len(t.records) + 1, Name: name, Type: typ, Scope: scope}
	t.records = append(t.records, r)
	return r
}

// Declare records a function or class definition.  The record is stored at
// the "global" scope regardless of the lexical scope at the point of
// definition, and an existing record of the same name is retyped and promoted
// rather than duplicated.
func (t *Table) Declare(name, typ string) *Record {
	for _, r := range t.records {
		if r.Name == name {
			r.Type = typ
			r.Scope = "global"
			return r
		}
	}
	r := &Record{ID: len(t.records) + 1, Name: name, Type: typ, Scope: "global"}
	t.records = append(t.records, r)
	return r
}

// Lookup returns the recorded type of name visible from scope, consulting the
// given scope first and then "global".  Unrecorded names are "unknown".
func (t *Table) Lookup(name, scope string) string {
	for _, r := range t.records {
		if r.Name == name && (r.Scope == scope || r.Scope == "global") {
			return r.Type
		}
	}
	return "unknown"
}

// Records returns the table contents in insertion order.
func (t *Table) Records() []*Record {
	return t.records
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	return len(t.records)
}
