// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the read-only view of the registry that builtin
// listing procedures use.

package procedure

// SignatureInfo describes one registered entry point.
type SignatureInfo struct {
	Kind        Kind
	Name        string
	Signature   string
	Description string
	Mode        Mode
	Deprecated  bool
}

// SignatureCatalog lists what is currently registered. It is available as a
// context component.
type SignatureCatalog interface {
	Signatures(kind Kind) []SignatureInfo
}
