// Package potential implements discrete probability tables and their algebra.
//
// A [Potential] is a dense table of float64 values indexed by an ordered list
// of discrete [Variable]s. The first variable varies fastest in the flat
// value slice, so a conditional table P(Cancer | Smoking) over
// (Cancer, Smoking) stores
//
//	P(c0|s0), P(c1|s0), P(c0|s1), P(c1|s1)
//
// Binary operations ([Multiply], [Divide], [Add], [Subtract]) align their
// operands by variable name and broadcast over variables present in only one
// of them. The result is laid out over the left operand's variables followed
// by the right operand's remaining ones.
//
// Potentials are values: every operation returns a new table and leaves its
// inputs untouched.
package potential
