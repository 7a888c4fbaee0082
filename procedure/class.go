// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Class, the unit the loader hands to the compiler.

package procedure

import (
	"reflect"
	"strings"
)

// Class describes an extension type to the runtime.
type Class struct {
	// Namespace is the dot separated namespace of members without an explicit
	// name. When empty the last segment of the package path is used.
	Namespace string

	// Type is the struct type implementing Declarer.
	Type reflect.Type

	// New constructs a fresh instance. It must be a function without
	// arguments returning *T or T. When nil an exported type is allocated
	// with reflect.New.
	New any
}

// ClassOf describes T. ctor may be nil.
func ClassOf[T any](namespace string, ctor any) Class {
	return Class{
		Namespace: namespace,
		Type:      reflect.TypeOf((*T)(nil)).Elem(),
		New:       ctor,
	}
}

// Name is the bare type name used in diagnostics.
func (c Class) Name() string {
	if c.Type == nil {
		return ""
	}
	return c.Type.Name()
}

// FullName is the name manifests refer to the class by.
func (c Class) FullName() string {
	if ns := c.NamespaceSegments(); len(ns) > 0 {
		return strings.Join(ns, ".") + "." + c.Name()
	}
	return c.Name()
}

// NamespaceSegments returns the effective namespace split on dots.
func (c Class) NamespaceSegments() []string {
	ns := c.Namespace
	if ns == "" && c.Type != nil {
		pkg := c.Type.PkgPath()
		if i := strings.LastIndex(pkg, "/"); i >= 0 {
			pkg = pkg[i+1:]
		}
		// main packages have no meaningful namespace.
		if pkg == "main" {
			pkg = ""
		}
		ns = pkg
	}
	if ns == "" {
		return nil
	}
	return strings.Split(ns, ".")
}
