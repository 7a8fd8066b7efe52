// Package exprgen turns classified, converted tokens into predicate
// sub-expressions.
//
// Generation has two halves. The field-local condition compares the
// field reference with the converted value ("Sku == \"X1\""). Blending
// then quantifies over every collection hop on the field's navigation
// path, emitting a null guard and an Any(...) frame per hop:
//
//	Items != null && Items.Any(Sku == "X1")
//
// How references are written inside a frame is decided by a Strategy.
// ImplicitScope relies on the element being the implicit scope of the
// Any body; LambdaScope binds it to a named lambda variable.
package exprgen
