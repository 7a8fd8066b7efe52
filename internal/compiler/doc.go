// Package compiler compiles filter text against a registered table into
// a predicate expression.
//
// A compile call scans the text for clauses, then resolves, classifies,
// converts and generates each clause in turn. Compiled clauses are
// spliced back into the text; failed clauses keep their raw text and
// report a diagnostic. Connectives and grouping between clauses pass
// through unchanged.
//
//	c, _ := compiler.New(reg)
//	res, _ := c.Compile("Shop.Order", `Items.Sku = "X1" && !(status in "Paid,Shipped")`)
//	res.Text // Items != null && Items.Any(Sku == "X1") && !(Status in ("Paid", "Shipped"))
package compiler
