// Package model describes the base objects manipulated by datapack.
//
// The object model is composed of:
//
//	Manifests:
//	  A manifest describes one chunked object: how large it was, how it
//	  was split into pieces, where each piece lives in the content store
//	  and how to verify every piece as well as the reassembled whole.
//
//	Pieces:
//	  A piece is one fixed size (or final short) slice of a chunked
//	  object. Replicated pieces carry the same checksum as their primary.
//
//	Archive metadata:
//	  The first record of a portable archive, describing the objects
//	  bundled after it.
//
//	Item records:
//	  Minimal per object records re-derived by an archive import.
package model
