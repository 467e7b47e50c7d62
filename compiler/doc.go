/*
Package compiler glues the stages together.

	Source Text ->
		parse ->
	Abstract Syntax Tree (ast) ->
		front ->
	Intermediate Representation (ir) ->
		dump ->
	IR Text ->
		raw ->
	Raw IR Graph (raw) ->
		back ->
	RISC-V Assembly Text

The IR text is the handoff point between the two halves,
so the back end can also be fed hand-written IR.
*/
package compiler
