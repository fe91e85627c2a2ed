// Package core provides the in-memory inventory table engine.
//
// This package holds all domain logic independent of any UI or transport
// layer. It can be used by web handlers, the CLI, the terminal grid, or tests
// without modification.
//
// # Architecture
//
// Data flows one way through the package:
//
//	raw text -> Parse -> Dataset -> NewTable -> Project(Query) -> rendered rows
//	                                   ^                |
//	                                   |            ApplyEdit
//	                                   +----------------+
//	Table.ExportText -> Serialize -> raw text
//
//   - Value: a tagged cell scalar (Number, Text or Missing).
//   - Coerce: the number-or-string rule shared by Parse and ApplyEdit.
//   - Parse / Serialize: the delimited-text codec.
//   - GuessQuantityColumn: picks the single editable column by name.
//   - Table: the canonical row store. Rows carry a stable RowID so edits
//     issued from a filtered or sorted view land on the right row.
//   - Project: the filter-then-stable-sort view over a Table's rows.
//
// # Edits
//
// Edits are addressed by RowID, never by position in a view:
//
//	view := tbl.View(core.Query{Search: "milk"})
//	res := tbl.ApplyEdit(ctx, view[0].ID, "Stock", "12")
//
// Every applied edit is appended to the table's in-memory edit log and can be
// undone with [Table.Revert].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// See error_messages.go for the code reference.
package core
